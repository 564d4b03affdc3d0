package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with one table per dataset.
func (e *PDFExporter) Render(title string, datasets []Dataset) ([]byte, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one dataset")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, translate(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	for _, data := range datasets {
		if len(data.Headers) == 0 {
			return nil, fmt.Errorf("pdf dataset requires at least one header")
		}
		if data.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 9, translate(data.Title), "", 1, "L", false, 0, "")
			pdf.Ln(1)
		}

		pdf.SetFont("Arial", "B", 10)
		colWidth := 190.0 / float64(len(data.Headers))
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, translate(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range data.Rows {
			for _, header := range data.Headers {
				pdf.CellFormat(colWidth, 7, translate(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
