// Package render turns section content into display markup for one of the
// report layouts without ever showing a section heading twice.
package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/logger"
)

// Input is one section to render
type Input struct {
	SectionID string
	// Number is the 1-based display position, used by generated headings
	Number  int
	Title   string
	Content string
	// Format is the declared content format; empty means markdown
	Format string
	IsHTML bool
	Layout model.Layout
}

// Output is the rendered section
type Output struct {
	// Heading is the generated "N. Title" heading, empty when the layout's
	// chrome renders the title itself
	Heading string
	Body    string
	// IsHTML is true when Body is the unmodified HTML input
	IsHTML bool
	// Opaque is true when Body is the unmodified input of an unsupported format
	Opaque bool
	// Fallback is true when markdown conversion failed and the paragraph splitter was used
	Fallback bool
}

// Markup returns the heading followed by the body
func (o Output) Markup() string {
	if o.Heading == "" {
		return o.Body
	}
	return o.Heading + "\n" + o.Body
}

// Converter is the subset of goldmark.Markdown the renderer needs
type Converter interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// Renderer converts section content per layout.
// It holds one markdown pipeline per layout and is safe for concurrent use.
type Renderer struct {
	pipelines map[model.Layout]Converter
}

// New creates a renderer with a pipeline for every layout
func New() *Renderer {
	r := &Renderer{pipelines: make(map[model.Layout]Converter, len(model.AllLayouts()))}
	for _, l := range model.AllLayouts() {
		r.pipelines[l] = newPipeline(l)
	}
	return r
}

// Use replaces the markdown pipeline of one layout, for example with a
// goldmark instance carrying extra extensions. It must be called before the
// renderer is shared.
func (r *Renderer) Use(layout model.Layout, c Converter) *Renderer {
	if layout.IsValid() && c != nil {
		r.pipelines[layout] = c
	}
	return r
}

func newPipeline(layout model.Layout) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&headingTransformer{layout: layout, policy: layout.HeadingPolicy()}, 100),
			),
		),
	)
}

// Render converts one section. It never fails: conversion problems degrade
// to plain paragraphs.
func (r *Renderer) Render(in Input) Output {
	layout := in.Layout
	if !layout.IsValid() {
		layout = model.DefaultLayout
	}

	var out Output
	if layout.HeadingPolicy().GenerateHeading {
		out.Heading = generatedHeading(in.Number, in.Title, layout)
	}

	format := strings.ToLower(strings.TrimSpace(in.Format))
	switch {
	case in.IsHTML || format == model.FormatHTML:
		out.Body = in.Content
		out.IsHTML = true
	case format == "" || format == model.FormatMarkdown || format == model.FormatText || format == "md":
		out.Body, out.Fallback = r.markdown(in.Content, layout)
	default:
		out.Body = in.Content
		out.Opaque = true
	}
	return out
}

// RenderSection renders a derived section at its display position
func (r *Renderer) RenderSection(s model.Section, layout model.Layout) model.RenderedSection {
	out := r.Render(Input{
		SectionID: s.ID,
		Number:    s.OrderIndex + 1,
		Title:     s.CanonicalTitle,
		Content:   s.RawContent,
		Format:    s.Format,
		IsHTML:    s.IsHTML,
		Layout:    layout,
	})
	return model.RenderedSection{
		SectionID:      s.ID,
		CanonicalTitle: s.CanonicalTitle,
		RenderedMarkup: out.Markup(),
		IsHTML:         out.IsHTML,
		Fallback:       out.Fallback,
	}
}

func (r *Renderer) markdown(content string, layout model.Layout) (body string, fallback bool) {
	src := Preprocess(content)
	if src == "" {
		return "", false
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("Markdown conversion panicked, using paragraph fallback",
				zap.String("layout", string(layout)),
				zap.Any("panic", rec),
			)
			body, fallback = Paragraphs(stripHeadingLines(src, layout.HeadingPolicy())), true
		}
	}()

	var buf bytes.Buffer
	if err := r.pipelines[layout].Convert([]byte(src), &buf); err != nil {
		logger.Warn("Markdown conversion failed, using paragraph fallback",
			zap.String("layout", string(layout)),
			zap.Error(err),
		)
		return Paragraphs(stripHeadingLines(src, layout.HeadingPolicy())), true
	}
	return strings.TrimSpace(buf.String()), false
}

var atxHeading = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]|$)`)

// stripHeadingLines drops the heading lines the layout's policy removes, so
// the paragraph fallback keeps the same headings the markdown pipeline would.
// Lines inside fenced code blocks are left alone.
func stripHeadingLines(src string, policy model.HeadingPolicy) string {
	lines := strings.Split(src, "\n")
	out := lines[:0]
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence {
			if m := atxHeading.FindStringSubmatch(line); m != nil {
				if level := len(m[1]); level == 1 || level > policy.MaxLevel {
					continue
				}
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func generatedHeading(number int, title string, layout model.Layout) string {
	label := html.EscapeString(title)
	if number > 0 {
		label = fmt.Sprintf("%d. %s", number, label)
	}
	return fmt.Sprintf(`<h2 class="ad-section-title ad-%s">%s</h2>`, layout, label)
}

// Paragraphs splits text on blank lines into escaped <p> elements
func Paragraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var parts []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		escaped := html.EscapeString(block)
		parts = append(parts, "<p>"+strings.ReplaceAll(escaped, "\n", "<br>\n")+"</p>")
	}
	return strings.Join(parts, "\n")
}

// RenderEmptyState is shown instead of sections when a report has none
func RenderEmptyState(layout model.Layout) string {
	return fmt.Sprintf(`<div class="ad-empty-state ad-%s"><p>%s</p></div>`,
		layout, html.EscapeString(consts.EmptyReportMessage))
}

// RenderFailure shows a failed report: the backend error verbatim, or a generic message
func RenderFailure(report *model.Report, layout model.Layout) string {
	msg := strings.TrimSpace(report.ErrorMessage())
	if msg == "" {
		msg = consts.GenericFailureMessage
	}
	return fmt.Sprintf(`<div class="ad-error-state ad-%s" role="alert"><p>%s</p></div>`,
		layout, html.EscapeString(msg))
}
