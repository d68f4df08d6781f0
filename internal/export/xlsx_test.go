package export

import (
	"bytes"
	"testing"
	"time"

	"catty_srv/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testFileInfo() FileInfo {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return FileInfo{
		ID:              "11111111-2222-3333-4444-555555555555",
		Code:            "F-ABC123",
		Name:            "Checklist de prueba",
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Hour),
		TemplateID:      "66666666-7777-8888-9999-000000000000",
		TemplateCode:    "TPL-BASE-001",
		TemplateVersion: 2,
	}
}

func buildTestDocument(t *testing.T) *document.Document {
	t.Helper()
	raw := []byte(`{
		"meta": {"name": "Checklist de prueba", "area": "Calidad"},
		"columns": [
			{"key": "id", "label": "ID", "type": "number"},
			{"key": "title", "label": "Título", "type": "text"},
			{"key": "vi_label", "label": "VI", "type": "text"}
		],
		"nodes": [
			{"id": 1, "title": "Primera", "vi_label": "2"},
			{"id": 2, "title": "Segunda", "vi_label": "1"}
		],
		"intro": ["Bienvenido al checklist"],
		"questions": {"q1": "¿Completado?"},
		"scales": {"VI": [{"key": "1", "label": "Bajo"}, {"key": "2", "label": "Medio"}]}
	}`)
	return document.Parse(raw)
}

func TestWorkbookSheets(t *testing.T) {
	data, err := Workbook(testFileInfo(), buildTestDocument(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Checklist", "Meta", "Preguntas", "Intro", "Columnas"}, f.GetSheetList())
}

func TestWorkbookChecklistSheet(t *testing.T) {
	data, err := Workbook(testFileInfo(), buildTestDocument(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Checklist")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Título", "VI"}, rows[0])
	assert.Equal(t, "Primera", rows[1][1])
	// Scale codes render as their labels on label columns.
	assert.Equal(t, "Medio", rows[1][2])
	assert.Equal(t, "Bajo", rows[2][2])
}

func TestWorkbookMetaSheet(t *testing.T) {
	info := testFileInfo()
	data, err := Workbook(info, buildTestDocument(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Meta")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 9)

	assert.Equal(t, []string{"Campo", "Valor"}, rows[0])
	assert.Equal(t, "code", rows[2][0])
	assert.Equal(t, info.Code, rows[2][1])
	assert.Equal(t, "template_code", rows[7][0])
	assert.Equal(t, info.TemplateCode, rows[7][1])

	// Document meta entries follow the fixed block after a blank separator.
	last := rows[len(rows)-1]
	assert.Equal(t, "area", last[0])
	assert.Equal(t, "Calidad", last[1])
}

func TestWorkbookInfersColumnsWhenNoneDeclared(t *testing.T) {
	doc := document.Parse([]byte(`{"nodes": [{"id": 1, "custom_field": "x"}]}`))

	data, err := Workbook(testFileInfo(), doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Checklist")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "custom_field"}, rows[0])
}

func TestWorkbookEmptyDocument(t *testing.T) {
	data, err := Workbook(testFileInfo(), document.Parse([]byte(`{}`)))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Checklist")
}
