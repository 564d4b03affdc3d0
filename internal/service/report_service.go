package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/culokossa/culib-api/pkg/errors"
	"github.com/culokossa/culib-api/pkg/export"
)

// ReportFormat selects the rendered output of the statistics report.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportFile is a rendered report ready to be served as a download.
type ReportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

type csvRenderer interface {
	RenderAll(datasets []export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, datasets []export.Dataset) ([]byte, error)
}

// ReportService renders the usage statistics report for admins, in CSV or PDF
// form. It reuses the recent-uploads view so the report matches what the
// public site shows.
type ReportService struct {
	stats     *StatsService
	documents *DocumentService
	csv       csvRenderer
	pdf       pdfRenderer
	recentN   int
	logger    *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(stats *StatsService, documents *DocumentService, csv csvRenderer, pdf pdfRenderer, recentN int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recentN <= 0 {
		recentN = 10
	}
	return &ReportService{stats: stats, documents: documents, csv: csv, pdf: pdf, recentN: recentN, logger: logger}
}

// Generate builds the report datasets and renders them in the requested
// format.
func (s *ReportService) Generate(ctx context.Context, format ReportFormat) (*ReportFile, error) {
	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.documents.Recent(ctx, s.recentN)
	if err != nil {
		return nil, err
	}

	overview := export.Dataset{
		Title:   "Vue d'ensemble",
		Headers: []string{"Indicateur", "Valeur"},
		Rows: []map[string]string{
			{"Indicateur": "Documents", "Valeur": strconv.Itoa(summary.TotalDocuments)},
			{"Indicateur": "Téléchargements", "Valeur": strconv.FormatInt(summary.TotalDownloads, 10)},
			{"Indicateur": "Visiteurs", "Valeur": strconv.FormatInt(summary.UniqueVisitors, 10)},
		},
	}

	perEntity := export.Dataset{
		Title:   "Documents par établissement",
		Headers: []string{"Établissement", "Documents"},
	}
	for _, row := range summary.DocumentsPerEntity {
		perEntity.Rows = append(perEntity.Rows, map[string]string{
			"Établissement": row.EntityName,
			"Documents":     strconv.Itoa(row.Count),
		})
	}

	topDownloads := export.Dataset{
		Title:   "Documents les plus téléchargés",
		Headers: []string{"Document", "Téléchargements"},
	}
	for _, row := range summary.TopDownloaded {
		topDownloads.Rows = append(topDownloads.Rows, map[string]string{
			"Document":        row.Title,
			"Téléchargements": strconv.FormatInt(row.Downloads, 10),
		})
	}

	recentUploads := export.Dataset{
		Title:   "Ajouts récents",
		Headers: []string{"Document", "Filière", "Type", "Date"},
	}
	for _, doc := range recent {
		recentUploads.Rows = append(recentUploads.Rows, map[string]string{
			"Document": doc.Title,
			"Filière":  doc.Program.Name,
			"Type":     doc.DocumentType.Name,
			"Date":     doc.UploadDate.Format("2006-01-02"),
		})
	}

	datasets := []export.Dataset{overview, perEntity, topDownloads, recentUploads}
	stamp := time.Now().UTC().Format("20060102-150405")

	switch format {
	case ReportFormatCSV:
		content, err := s.csv.RenderAll(datasets)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{
			FileName:    fmt.Sprintf("rapport-statistiques-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render("Rapport des statistiques", datasets)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{
			FileName:    fmt.Sprintf("rapport-statistiques-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
