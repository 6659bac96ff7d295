package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/verustcode/adreport/internal/model"
)

// MarkdownExporter exports reports as a single Markdown document
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export merges the cover, table of contents and sections into one document.
// Section content is the raw backend content; HTML sections are embedded as is.
func (e *MarkdownExporter) Export(_ context.Context, doc *model.ExportPayload) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(documentTitle(doc))
	sb.WriteString("\n\n")

	for _, f := range coverFields(doc.Cover) {
		fmt.Fprintf(&sb, "- **%s:** %s\n", f[0], f[1])
	}
	sb.WriteString("\n")

	if doc.StateMarkup != "" {
		sb.WriteString(doc.StateMarkup)
		sb.WriteString("\n")
		return []byte(sb.String()), nil
	}

	if len(doc.TOC) > 0 {
		sb.WriteString("## Inhoudsopgave\n\n")
		for _, entry := range doc.TOC {
			fmt.Fprintf(&sb, "%d. [%s](#%s)\n", entry.Number, entry.Title, createAnchor(entry.SectionID))
		}
		sb.WriteString("\n---\n\n")
	}

	for i, s := range doc.Sections {
		fmt.Fprintf(&sb, "<a id=\"%s\"></a>\n\n## %d. %s\n\n", createAnchor(s.SectionID), s.Number, s.Title)
		if s.IsHTML {
			sb.WriteString(strings.TrimSpace(s.RawContent))
		} else {
			sb.WriteString(stripLevelOneHeadings(s.RawContent))
		}
		sb.WriteString("\n")
		if i < len(doc.Sections)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// Name returns the human-readable name of this exporter
func (e *MarkdownExporter) Name() string {
	return "Markdown"
}

// FileExtension returns the file extension for Markdown files
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// ContentType returns the MIME type for Markdown files
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}
