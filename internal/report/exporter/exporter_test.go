package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "text"})
}

func testPayload() *model.ExportPayload {
	return &model.ExportPayload{
		ReportID: "rep-001",
		Layout:   model.LayoutStandard,
		Cover: model.CoverPage{
			Title:        "Arbeidsdeskundig rapport J. Jansen",
			ReportID:     "rep-001",
			CaseTitle:    "Dossier Jansen",
			EmployeeName: "Jan Jansen",
			EmployerName: "Bouwbedrijf De Vries B.V.",
			Advisor:      &model.UserProfile{FirstName: "Petra", LastName: "Bakker", JobTitle: "Arbeidsdeskundige"},
			Status:       model.ReportStatusCompleted,
			Date:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		TOC: []model.TOCEntry{
			{Number: 1, SectionID: "vraagstelling", Title: "Vraagstelling"},
			{Number: 2, SectionID: "conclusie", Title: "Conclusie"},
		},
		Sections: []model.ExportSection{
			{
				Number:     1,
				SectionID:  "vraagstelling",
				Title:      "Vraagstelling",
				Markup:     `<h2 class="ad-section-title ad-standard">1. Vraagstelling</h2>` + "\n<p>Kan werknemer hervatten?</p>",
				RawContent: "# Vraagstelling\n\nKan werknemer hervatten?",
				Format:     model.FormatMarkdown,
			},
			{
				Number:     2,
				SectionID:  "conclusie",
				Title:      "Conclusie",
				Markup:     `<h2 class="ad-section-title ad-standard">2. Conclusie</h2>` + "\n<p>Geschikt voor <b>ander</b> werk.</p>",
				RawContent: "<p>Geschikt voor <b>ander</b> werk.</p>",
				Format:     model.FormatHTML,
				IsHTML:     true,
			},
		},
		Structured: map[string]any{
			"employee": map[string]any{"name": "Jan Jansen", "phone": "06-12345678"},
			"workability": map[string]any{
				"restrictions": []any{"Niet tillen", "Niet bukken"},
				"hours":        "24",
			},
			"history": map[string]any{
				"positions": []any{
					map[string]any{"title": "Timmerman"},
					map[string]any{"title": "Uitvoerder"},
				},
			},
		},
		GeneratedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
}

// ====================
// Tests for helpers.go
// ====================

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple filename", input: "rapport", expected: "rapport"},
		{name: "with spaces", input: "mijn rapport", expected: "mijn_rapport"},
		{name: "with unsafe characters", input: "rapport:test/bestand*naam?", expected: "rapport_test_bestand_naam"},
		{name: "with consecutive underscores", input: "rapport__test", expected: "rapport_test"},
		{name: "with leading/trailing underscores", input: "_rapport_", expected: "rapport"},
		{name: "too long filename", input: strings.Repeat("a", 150), expected: strings.Repeat("a", 100)},
		{name: "multi-byte cut", input: strings.Repeat("a", 99) + "é", expected: strings.Repeat("a", 99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeFilename(tt.input))
		})
	}
}

func TestCreateAnchor(t *testing.T) {
	assert.Equal(t, "sectie-gegevens-werknemer", createAnchor("gegevens_werknemer"))
	assert.Equal(t, "sectie-eigen-onderdeel", createAnchor("Eigen onderdeel"))
}

func TestStripLevelOneHeadings(t *testing.T) {
	in := "# Titel\n\nTekst\n## Sub\n#hashtag"
	assert.Equal(t, "Tekst\n## Sub\n#hashtag", stripLevelOneHeadings(in))
}

func TestCoverFields(t *testing.T) {
	fields := coverFields(testPayload().Cover)

	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f[0]
	}
	assert.Equal(t, []string{"Dossier", "Werknemer", "Werkgever", "Arbeidsdeskundige", "Functie", "Status", "Datum"}, labels)
	assert.Equal(t, "Petra Bakker", fields[3][1])
	assert.Equal(t, "Afgerond", fields[5][1])
	assert.Equal(t, "5 maart 2024", fields[6][1])
}

// ====================
// Tests for interface.go - ExportManager
// ====================

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, f)

	f, err = ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatMarkdown, f)

	_, err = ParseFormat("docx")
	assert.True(t, errors.HasCode(err, errors.ErrCodeExportFormat))
}

func TestExportManager_Register(t *testing.T) {
	manager := NewExportManager()
	exporter := NewMarkdownExporter()

	manager.Register(ExportFormatMarkdown, exporter)

	registered, err := manager.GetExporter(ExportFormatMarkdown)
	assert.NoError(t, err)
	assert.Equal(t, exporter, registered)
}

func TestExportManager_Export_UnsupportedFormat(t *testing.T) {
	manager := NewExportManager()

	_, err := manager.Export(context.Background(), testPayload(), ExportFormatPDF)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExportFormat))
}

func TestExportManager_ExportToFile(t *testing.T) {
	manager := NewExportManager()
	manager.Register(ExportFormatMarkdown, NewMarkdownExporter())

	outputPath := filepath.Join(t.TempDir(), "nested", "rapport.md")
	size, err := manager.ExportToFile(context.Background(), testPayload(), outputPath, ExportFormatMarkdown)
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Contains(t, string(content), "Arbeidsdeskundig rapport J. Jansen")
}

func TestExportManager_GenerateFilename(t *testing.T) {
	manager := NewDefaultExportManager(DefaultPDFOptions())
	doc := testPayload()

	assert.Equal(t, "Arbeidsdeskundig_rapport_J._Jansen.pdf", manager.GenerateFilename(doc, ExportFormatPDF))
	assert.Equal(t, "Arbeidsdeskundig_rapport_J._Jansen.xlsx", manager.GenerateFilename(doc, ExportFormatXLSX))

	doc.Cover.Title = ""
	assert.Equal(t, "rapportage-rep-001.md", manager.GenerateFilename(doc, ExportFormatMarkdown))
	assert.Equal(t, "rapportage-rep-001.txt", NewExportManager().GenerateFilename(doc, "docx"))
}

func TestExportManager_SupportedFormats(t *testing.T) {
	manager := NewDefaultExportManager(DefaultPDFOptions())
	assert.Equal(t, []ExportFormat{
		ExportFormatHTML, ExportFormatJSON, ExportFormatMarkdown, ExportFormatPDF, ExportFormatXLSX,
	}, manager.SupportedFormats())
}

// failingExporter always fails
type failingExporter struct{ *MarkdownExporter }

func (failingExporter) Export(context.Context, *model.ExportPayload) ([]byte, error) {
	return nil, assert.AnError
}

func TestExportManager_WrapsExporterErrors(t *testing.T) {
	manager := NewExportManager()
	manager.Register(ExportFormatMarkdown, failingExporter{NewMarkdownExporter()})

	_, err := manager.Export(context.Background(), testPayload(), ExportFormatMarkdown)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExportFailed))
	assert.ErrorIs(t, err, assert.AnError)
}

// ====================
// Tests for markdown.go
// ====================

func TestMarkdownExporter_Export(t *testing.T) {
	out, err := NewMarkdownExporter().Export(context.Background(), testPayload())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# Arbeidsdeskundig rapport J. Jansen\n"))
	assert.Contains(t, md, "- **Werknemer:** Jan Jansen")
	assert.Contains(t, md, "1. [Vraagstelling](#sectie-vraagstelling)")
	assert.Contains(t, md, "## 1. Vraagstelling\n\nKan werknemer hervatten?")
	assert.Equal(t, 1, strings.Count(md, "Vraagstelling\n\nKan"), "source h1 is not repeated")
	assert.NotContains(t, md, "# Vraagstelling\n")
	assert.Contains(t, md, "<p>Geschikt voor <b>ander</b> werk.</p>")
}

func TestMarkdownExporter_StateMarkup(t *testing.T) {
	doc := testPayload()
	doc.StateMarkup = `<div class="ad-error-state">Mislukt</div>`

	out, err := NewMarkdownExporter().Export(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "ad-error-state")
	assert.NotContains(t, string(out), "Inhoudsopgave")
}

// ====================
// Tests for json.go
// ====================

func TestJSONExporter_Export(t *testing.T) {
	out, err := NewJSONExporter().Export(context.Background(), testPayload())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "rep-001", decoded["report_id"])
	assert.Len(t, decoded["sections"], 2)
	assert.Contains(t, decoded, "structured")
}

// ====================
// Tests for html.go
// ====================

func TestHTMLExporter_Export(t *testing.T) {
	out, err := NewHTMLExporter().Export(context.Background(), testPayload())
	require.NoError(t, err)
	html := string(out)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<html lang="nl">`)
	assert.Contains(t, html, `<body class="ad-layout-standard">`)
	assert.Contains(t, html, `class="ad-logo"`)
	assert.Contains(t, html, `<a href="#sectie-conclusie">Conclusie</a>`)
	assert.Contains(t, html, `<section class="ad-section" id="sectie-vraagstelling"`)
	assert.Equal(t, 1, strings.Count(html, "1. Vraagstelling</h2>"), "standard markup already carries the heading")
	assert.NotContains(t, html, "<script")
}

func TestHTMLExporter_ModernAddsTitle(t *testing.T) {
	doc := testPayload()
	doc.Layout = model.LayoutModern
	doc.Sections[0].Markup = "<p>Kan werknemer hervatten?</p>"

	out, err := NewHTMLExporter().Export(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<h2 class="ad-section-title ad-modern">Vraagstelling</h2>`)
}

func TestHTMLExporter_EscapesCover(t *testing.T) {
	doc := testPayload()
	doc.Cover.Title = `<script>alert(1)</script>`
	doc.Cover.EmployeeName = `Jan & "Co"`

	out, err := NewHTMLExporter().Export(context.Background(), doc)
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Jan &amp; &#34;Co&#34;")
}

func TestRenderDocument_PrintOmitsLogo(t *testing.T) {
	assert.NotContains(t, renderDocument(testPayload(), true), `class="ad-logo"`)
}

// ====================
// Tests for pdf.go
// ====================

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.Equal(t, 8.27, opts.PaperWidth)
	assert.Equal(t, 11.69, opts.PaperHeight)
	assert.True(t, opts.DisplayHeaderFooter)
	assert.True(t, opts.PrintBackground)
	assert.Equal(t, 1.0, opts.Scale)
	assert.Equal(t, 120*time.Second, opts.Timeout)
}

func TestPDFOptionsFromConfig(t *testing.T) {
	opts := PDFOptionsFromConfig(config.PDFConfig{
		PaperSize:  "Letter",
		Landscape:  true,
		Timeout:    30 * time.Second,
		ChromePath: "/usr/bin/chromium",
	})
	assert.Equal(t, 8.5, opts.PaperWidth)
	assert.Equal(t, 11.0, opts.PaperHeight)
	assert.True(t, opts.Landscape)
	assert.False(t, opts.PrintBackground)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, "/usr/bin/chromium", opts.ChromePath)
}

func TestPDFExporter_HeaderFooter(t *testing.T) {
	header, footer := NewPDFExporter().generateHeaderFooter(testPayload())
	assert.Contains(t, header, "AD Rapportage")
	assert.Contains(t, header, "Arbeidsdeskundig rapport J. Jansen")
	assert.Contains(t, footer, `<span class="pageNumber"></span>`)
	assert.Contains(t, footer, `<span class="totalPages"></span>`)
}

func TestPDFExporter_Metadata(t *testing.T) {
	e := NewPDFExporter()
	assert.Equal(t, "PDF", e.Name())
	assert.Equal(t, ".pdf", e.FileExtension())
	assert.Equal(t, "application/pdf", e.ContentType())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

// ====================
// Tests for xlsx.go
// ====================

func TestXLSXExporter_Export(t *testing.T) {
	out, err := NewXLSXExporter().Export(context.Background(), testPayload())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetCover, sheetTOC, sheetStructured}, f.GetSheetList())

	title, err := f.GetCellValue(sheetCover, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Arbeidsdeskundig rapport J. Jansen", title)

	tocRows, err := f.GetRows(sheetTOC)
	require.NoError(t, err)
	require.Len(t, tocRows, 3)
	assert.Equal(t, []string{"2", "conclusie", "Conclusie"}, tocRows[2])

	rows, err := f.GetRows(sheetStructured)
	require.NoError(t, err)
	assert.Equal(t, []string{"Onderdeel", "Veld", "Waarde"}, rows[0])
	assert.Contains(t, rows, []string{"Employee", "name", "Jan Jansen"})
	assert.Contains(t, rows, []string{"Workability", "restrictions", "Niet tillen; Niet bukken"})
	assert.Contains(t, rows, []string{"History", "positions[2].title", "Uitvoerder"})
}

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]any{
		"b": 1.0,
		"a": map[string]any{"x": nil, "y": []any{"p", "q"}},
	})
	assert.Equal(t, [][2]string{{"a.x", ""}, {"a.y", "p; q"}, {"b", "1"}}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
