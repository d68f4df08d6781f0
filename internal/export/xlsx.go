package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"catty_srv/internal/document"

	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	sheetChecklist = "Checklist"
	sheetMeta      = "Meta"
	sheetQuestions = "Preguntas"
	sheetIntro     = "Intro"
	sheetColumns   = "Columnas"
)

// FileInfo is the file metadata printed on the Meta sheet.
type FileInfo struct {
	ID              string
	Code            string
	Name            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	TemplateID      string
	TemplateCode    string
	TemplateVersion int
}

// Workbook renders a file's flat document into a multi-sheet xlsx workbook
// and returns the serialized bytes.
func Workbook(info FileInfo, doc *document.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeChecklistSheet(f, doc); err != nil {
		return nil, fmt.Errorf("checklist sheet: %w", err)
	}
	if err := writeMetaSheet(f, info, doc); err != nil {
		return nil, fmt.Errorf("meta sheet: %w", err)
	}
	if err := writeQuestionsSheet(f, doc); err != nil {
		return nil, fmt.Errorf("questions sheet: %w", err)
	}
	if err := writeIntroSheet(f, doc); err != nil {
		return nil, fmt.Errorf("intro sheet: %w", err)
	}
	if err := writeColumnsSheet(f, doc); err != nil {
		return nil, fmt.Errorf("columns sheet: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeChecklistSheet emits the node table: resolved headers, one row per
// node through the flattener, frozen header row, auto-filter, and width/wrap
// heuristics per column.
func writeChecklistSheet(f *excelize.File, doc *document.Document) error {
	f.SetSheetName("Sheet1", sheetChecklist)

	keys, headers, types := document.ResolveHeaders(doc.Columns)
	if len(keys) == 0 {
		keys = document.InferColumnKeys(doc.Nodes)
		headers = keys
		types = make([]string, len(keys))
	}
	if len(keys) == 0 {
		return nil
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetChecklist, cell, h); err != nil {
			return err
		}
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, 1)
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetChecklist, firstHeader, lastHeader, headerStyle); err != nil {
		return err
	}

	for r, node := range doc.Nodes {
		row := document.FlattenRow(node, doc.Nodes, keys, doc.Scales)
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetChecklist, cell, v); err != nil {
				return err
			}
		}
	}

	lastRow := len(doc.Nodes) + 1
	for i, key := range keys {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetChecklist, col, col, columnWidth(key, headers[i], types[i]))

		if wrapColumn(headers[i], types[i]) && lastRow > 1 {
			top, _ := excelize.CoordinatesToCellName(i+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(i+1, lastRow)
			f.SetCellStyle(sheetChecklist, top, bottom, wrapStyle)
		}
	}

	if err := f.SetPanes(sheetChecklist, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(headers), lastRow)
	return f.AutoFilter(sheetChecklist, "A1:"+lastCell, nil)
}

// columnWidth picks a width for one checklist column.
func columnWidth(key, header, colType string) float64 {
	nh := document.NormalizeKey(header)
	switch {
	case colType == "longtext" || strings.Contains(nh, "descrip"):
		return 90
	case colType == "text":
		return 40
	case len(key) == 1 || strings.EqualFold(key, "id"):
		return 6
	case strings.Contains(nh, "observ"):
		return 60
	case strings.Contains(nh, "agrup"):
		return 30
	default:
		return 14
	}
}

// wrapColumn reports whether data cells of the column get wrap-text styling.
func wrapColumn(header, colType string) bool {
	if colType == "longtext" {
		return true
	}
	nh := document.NormalizeKey(header)
	return strings.Contains(nh, "descrip") ||
		strings.Contains(nh, "observ") ||
		strings.Contains(nh, "justif")
}

func writeMetaSheet(f *excelize.File, info FileInfo, doc *document.Document) error {
	if _, err := f.NewSheet(sheetMeta); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Campo", "Valor"},
		{"id", info.ID},
		{"code", info.Code},
		{"name", info.Name},
		{"created_at", info.CreatedAt.Format(time.RFC3339)},
		{"updated_at", info.UpdatedAt.Format(time.RFC3339)},
		{"template_id", info.TemplateID},
		{"template_code", info.TemplateCode},
		{"template_version", info.TemplateVersion},
	}
	if len(doc.Meta) > 0 {
		rows = append(rows, []interface{}{"", ""})
		for _, e := range doc.Meta {
			rows = append(rows, []interface{}{e.Key, document.CellValue(e.Value)})
		}
	}

	f.SetColWidth(sheetMeta, "A", "A", 24)
	f.SetColWidth(sheetMeta, "B", "B", 60)
	return writeRows(f, sheetMeta, rows)
}

func writeQuestionsSheet(f *excelize.File, doc *document.Document) error {
	if _, err := f.NewSheet(sheetQuestions); err != nil {
		return err
	}

	rows := [][]interface{}{{"Key", "Text"}}
	for _, q := range doc.Questions {
		rows = append(rows, []interface{}{q.Key, document.CellValue(q.Value)})
	}

	f.SetColWidth(sheetQuestions, "A", "A", 24)
	f.SetColWidth(sheetQuestions, "B", "B", 90)
	return writeRows(f, sheetQuestions, rows)
}

func writeIntroSheet(f *excelize.File, doc *document.Document) error {
	if _, err := f.NewSheet(sheetIntro); err != nil {
		return err
	}

	rows := [][]interface{}{{"Index", "Text"}}
	for i, text := range doc.Intro {
		rows = append(rows, []interface{}{i + 1, text})
	}

	f.SetColWidth(sheetIntro, "B", "B", 90)
	return writeRows(f, sheetIntro, rows)
}

// writeColumnsSheet lists the original column specification entries, not the
// resolved headers.
func writeColumnsSheet(f *excelize.File, doc *document.Document) error {
	if _, err := f.NewSheet(sheetColumns); err != nil {
		return err
	}

	rows := [][]interface{}{{"key", "label", "type"}}
	for _, c := range doc.Columns {
		rows = append(rows, []interface{}{c.Key, c.Label, c.Type})
	}

	f.SetColWidth(sheetColumns, "A", "C", 24)
	return writeRows(f, sheetColumns, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
