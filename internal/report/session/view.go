package session

import (
	"context"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/sections"
	"github.com/verustcode/adreport/internal/report/structured"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// ViewOptions are the display flags of one view
type ViewOptions struct {
	Layout model.Layout `json:"layout"`
	// Structured adds typed record markup and the entity map
	Structured  bool              `json:"structured"`
	CaseContext model.CaseContext `json:"case_context"`
}

// SectionView is one rendered section
type SectionView struct {
	model.RenderedSection
	// StructuredMarkup is the typed record view, set only when structured display is on
	StructuredMarkup string `json:"structured_markup,omitempty"`
	Kind             string `json:"kind,omitempty"`
}

// View is everything a report screen shows
type View struct {
	ReportID string             `json:"report_id"`
	Title    string             `json:"title"`
	Status   model.ReportStatus `json:"status"`
	Layout   model.Layout       `json:"layout"`

	Structured bool   `json:"structured"`
	Selected   string `json:"selected_section,omitempty"`

	Sections        []SectionView     `json:"sections"`
	TableOfContents []sections.Entry  `json:"table_of_contents"`
	Entities        map[string]any    `json:"entities,omitempty"`
	Source          structured.Source `json:"structured_source,omitempty"`
	Violations      []string          `json:"schema_violations,omitempty"`

	// Pending is true until the first report arrived
	Pending bool `json:"pending"`
	// StateMarkup is the empty or failure state shown instead of sections
	StateMarkup string `json:"state_markup,omitempty"`
}

// BuildView derives the view from a report. Nothing is cached: every call
// recomputes sections, titles and markup from the raw record.
func BuildView(r *render.Renderer, report *model.Report, opts ViewOptions) *View {
	layout := opts.Layout
	if !layout.IsValid() {
		layout = model.DefaultLayout
	}

	v := &View{
		Layout:     layout,
		Structured: opts.Structured,
		Sections:   []SectionView{},
	}
	if report == nil {
		v.Pending = true
		return v
	}

	v.ReportID = report.ID
	v.Title = report.Title
	v.Status = report.Status

	if report.Status == model.ReportStatusFailed {
		v.StateMarkup = render.RenderFailure(report, layout)
		return v
	}

	ctx := context.Background()
	metrics := telemetry.GetMetrics()

	var records map[string]model.Record
	if opts.Structured {
		res := structured.Resolve(report, opts.CaseContext)
		records = res.Records
		v.Entities = res.Entities
		v.Source = res.Source
		v.Violations = res.SchemaViolations

		metrics.RecordStructuredResolution(ctx, string(res.Source))
		if len(res.SchemaViolations) > 0 {
			metrics.RecordSchemaViolation(ctx)
		}
	}

	built := sections.Build(report, records)
	if len(built) == 0 {
		v.StateMarkup = render.RenderEmptyState(layout)
		return v
	}

	for _, s := range built {
		sv := SectionView{RenderedSection: r.RenderSection(s, layout)}
		if opts.Structured && s.Parsed != nil {
			sv.Kind = string(s.Parsed.Kind())
			sv.StructuredMarkup = render.RenderRecord(s.Parsed, layout)
		}
		metrics.RecordRender(ctx, string(layout), s.Format, sv.Fallback)
		v.Sections = append(v.Sections, sv)
	}
	v.TableOfContents = sections.TableOfContents(report)
	return v
}
