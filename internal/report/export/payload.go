// Package export coordinates preview and download requests for a report:
// it builds the export payload and hands it to an export service.
package export

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/sections"
	"github.com/verustcode/adreport/internal/report/structured"
)

// BuildPayload assembles the cover page, table of contents and rendered
// sections of a report. A nil resolution leaves out structured data.
func BuildPayload(r *render.Renderer, report *model.Report, res *structured.Resolution, layout model.Layout, cc model.CaseContext) *model.ExportPayload {
	if !layout.IsValid() {
		layout = model.DefaultLayout
	}

	doc := &model.ExportPayload{
		ReportID:    report.ID,
		Layout:      layout,
		Cover:       cover(report, cc),
		TOC:         []model.TOCEntry{},
		Sections:    []model.ExportSection{},
		GeneratedAt: time.Now().UTC(),
	}

	if report.Status == model.ReportStatusFailed {
		doc.StateMarkup = render.RenderFailure(report, layout)
		return doc
	}

	var records map[string]model.Record
	if res != nil {
		records = res.Records
		doc.Structured = normalizeEntities(res.Entities)
	}

	built := sections.Build(report, records)
	if len(built) == 0 {
		doc.StateMarkup = render.RenderEmptyState(layout)
		return doc
	}

	for _, s := range built {
		rendered := r.RenderSection(s, layout)
		es := model.ExportSection{
			Number:     s.OrderIndex + 1,
			SectionID:  s.ID,
			Title:      s.CanonicalTitle,
			Markup:     rendered.RenderedMarkup,
			RawContent: s.RawContent,
			Format:     s.Format,
			IsHTML:     rendered.IsHTML,
		}
		if res != nil && s.Parsed != nil && s.Parsed.Kind() != model.KindPlainText {
			es.StructuredMarkup = render.RenderRecord(s.Parsed, layout)
		}
		doc.Sections = append(doc.Sections, es)
	}

	for _, entry := range sections.TableOfContents(report) {
		doc.TOC = append(doc.TOC, model.TOCEntry{Number: entry.Number, SectionID: entry.ID, Title: entry.Title})
	}
	return doc
}

// cover fills the cover page from the report and the case context.
// The employer falls back to the case title like placeholder records do.
func cover(report *model.Report, cc model.CaseContext) model.CoverPage {
	title := strings.TrimSpace(report.Title)
	if title == "" {
		title = strings.TrimSpace(cc.CaseTitle)
	}

	date := report.UpdatedAt
	if date.IsZero() {
		date = report.CreatedAt
	}

	return model.CoverPage{
		Title:        title,
		ReportID:     report.ID,
		CaseID:       report.CaseID,
		CaseTitle:    cc.CaseTitle,
		EmployeeName: cc.EmployeeName,
		EmployerName: cc.EmployerName,
		Advisor:      report.Metadata.UserProfile,
		Status:       report.Status,
		Date:         date,
	}
}

// normalizeEntities converts typed records to plain JSON values so every
// exporter sees maps, slices and scalars only.
func normalizeEntities(entities map[string]any) map[string]any {
	if len(entities) == 0 {
		return nil
	}
	raw, err := json.Marshal(entities)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
