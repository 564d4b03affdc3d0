package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsDatasets() []Dataset {
	return []Dataset{
		{
			Title:   "Vue d'ensemble",
			Headers: []string{"Indicateur", "Valeur"},
			Rows: []map[string]string{
				{"Indicateur": "Documents", "Valeur": "3"},
				{"Indicateur": "Téléchargements", "Valeur": "12"},
			},
		},
		{
			Title:   "Documents par établissement",
			Headers: []string{"Établissement", "Documents"},
			Rows: []map[string]string{
				{"Établissement": "ENSET", "Documents": "2"},
				{"Établissement": "INSTI", "Documents": "1"},
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(statsDatasets()[0])
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Indicateur,Valeur", lines[0])
	assert.Equal(t, "Documents,3", lines[1])
	assert.Equal(t, "Téléchargements,12", lines[2])
}

func TestCSVExporterRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterRenderAllSeparatesSections(t *testing.T) {
	out, err := NewCSVExporter().RenderAll(statsDatasets())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "Vue d'ensemble\n")
	assert.Contains(t, content, "Documents par établissement\n")
	assert.Contains(t, content, "ENSET,2")
	assert.Less(t, strings.Index(content, "Vue d'ensemble"), strings.Index(content, "Documents par établissement"))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render("Rapport des statistiques", statsDatasets())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterRenderRequiresDatasets(t *testing.T) {
	_, err := NewPDFExporter().Render("vide", nil)
	assert.Error(t, err)
}
