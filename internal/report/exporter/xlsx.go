package exporter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verustcode/adreport/internal/model"
)

// Sheet names of the workbook
const (
	sheetCover      = "Rapport"
	sheetTOC        = "Inhoudsopgave"
	sheetStructured = "Gegevens"
)

// maxCellText is the Excel limit for text in a single cell
const maxCellText = 32767

// XLSXExporter exports the cover, table of contents and structured data as a workbook
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSX exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Export writes three sheets: report details, table of contents and one
// row per structured field. Nested values are flattened to dotted paths.
func (e *XLSXExporter) Export(_ context.Context, doc *model.ExportPayload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with Sheet1; rename it instead of leaving it empty
	if err := f.SetSheetName(f.GetSheetName(0), sheetCover); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetTOC, sheetStructured} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	write := func(sheet string, row int, values ...any) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if s, ok := v.(string); ok {
				v = truncate(s, maxCellText)
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Report details
	write(sheetCover, 1, "Titel", documentTitle(doc))
	write(sheetCover, 2, "Rapport-ID", doc.ReportID)
	row := 3
	for _, field := range coverFields(doc.Cover) {
		write(sheetCover, row, field[0], field[1])
		row++
	}
	_ = f.SetColStyle(sheetCover, "A", header)
	_ = f.SetColWidth(sheetCover, "A", "A", 22)
	_ = f.SetColWidth(sheetCover, "B", "B", 60)

	// Table of contents
	write(sheetTOC, 1, "Nr.", "Sectie-ID", "Titel")
	for i, entry := range doc.TOC {
		write(sheetTOC, i+2, entry.Number, entry.SectionID, entry.Title)
	}
	_ = f.SetRowStyle(sheetTOC, 1, 1, header)
	_ = f.SetColWidth(sheetTOC, "A", "A", 6)
	_ = f.SetColWidth(sheetTOC, "B", "B", 28)
	_ = f.SetColWidth(sheetTOC, "C", "C", 48)

	// Structured data
	write(sheetStructured, 1, "Onderdeel", "Veld", "Waarde")
	row = 2
	for _, entity := range sortedKeys(doc.Structured) {
		for _, kv := range flatten("", doc.Structured[entity]) {
			write(sheetStructured, row, entityLabel(entity), kv[0], kv[1])
			row++
		}
	}
	_ = f.SetRowStyle(sheetStructured, 1, 1, header)
	_ = f.SetColWidth(sheetStructured, "A", "A", 22)
	_ = f.SetColWidth(sheetStructured, "B", "B", 32)
	_ = f.SetColWidth(sheetStructured, "C", "C", 70)

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Name returns the human-readable name of this exporter
func (e *XLSXExporter) Name() string {
	return "Excel"
}

// FileExtension returns the file extension for workbooks
func (e *XLSXExporter) FileExtension() string {
	return ".xlsx"
}

// ContentType returns the MIME type for workbooks
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// flatten turns a decoded JSON value into sorted (path, text) pairs.
// Lists of scalars are joined; lists of objects are indexed.
func flatten(prefix string, v any) [][2]string {
	switch t := v.(type) {
	case map[string]any:
		var out [][2]string
		for _, k := range sortedKeys(t) {
			out = append(out, flatten(join(prefix, k), t[k])...)
		}
		return out
	case []any:
		if allScalar(t) {
			parts := make([]string, len(t))
			for i, item := range t {
				parts[i] = scalarText(item)
			}
			return [][2]string{{prefix, strings.Join(parts, "; ")}}
		}
		var out [][2]string
		for i, item := range t {
			out = append(out, flatten(fmt.Sprintf("%s[%d]", prefix, i+1), item)...)
		}
		return out
	case []string:
		return [][2]string{{prefix, strings.Join(t, "; ")}}
	case map[string]string:
		var out [][2]string
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, [2]string{join(prefix, k), t[k]})
		}
		return out
	default:
		return [][2]string{{prefix, scalarText(v)}}
	}
}

func allScalar(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func scalarText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
