package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/culokossa/culib-api/pkg/errors"
	"github.com/culokossa/culib-api/pkg/export"
)

func newReportFixture() *ReportService {
	fix := newCatalogFixture()
	docsRepo := &fakeDocumentRepo{docs: sampleDocuments(), programs: fix.programs, departments: fix.departments}
	statsRepo := &fakeStatsRepo{downloads: map[int]int64{2: 4, 3: 1}, visitors: 9}
	statsSvc := NewStatsService(statsRepo, docsRepo, nil, time.Minute, 5, nil)
	documentSvc := newDocumentService(fix, docsRepo, &fakeStore{})
	return NewReportService(statsSvc, documentSvc, export.NewCSVExporter(), export.NewPDFExporter(), 10, nil)
}

func TestReportServiceGenerateCSV(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.Generate(context.Background(), ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.True(t, strings.HasSuffix(report.FileName, ".csv"))

	content := string(report.Content)
	assert.Contains(t, content, "Vue d'ensemble")
	assert.Contains(t, content, "Documents par établissement")
	assert.Contains(t, content, "Documents les plus téléchargés")
	assert.Contains(t, content, "Ajouts récents")
	assert.Contains(t, content, "Programmation Java")
	assert.Contains(t, content, "Visiteurs,9")
}

func TestReportServiceGeneratePDF(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.Generate(context.Background(), ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasSuffix(report.FileName, ".pdf"))
	assert.True(t, strings.HasPrefix(string(report.Content), "%PDF"))
}

func TestReportServiceGenerateUnknownFormat(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.Generate(context.Background(), ReportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
