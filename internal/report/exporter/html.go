package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/assets"
)

// HTMLExporter exports reports to a self-contained HTML file
type HTMLExporter struct{}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Export renders the cover page, table of contents and every section with
// the embedded stylesheet. No scripts are included; section markup is
// already rendered for the payload's layout.
func (e *HTMLExporter) Export(_ context.Context, doc *model.ExportPayload) ([]byte, error) {
	return []byte(renderDocument(doc, false)), nil
}

// Name returns the human-readable name of this exporter
func (e *HTMLExporter) Name() string {
	return "HTML"
}

// FileExtension returns the file extension for HTML files
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// ContentType returns the MIME type for HTML files
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}

// renderDocument builds the full HTML document. The print variant leaves
// out the logo on the cover because the PDF header carries it.
func renderDocument(doc *model.ExportPayload, print bool) string {
	layout := doc.Layout
	if !layout.IsValid() {
		layout = model.DefaultLayout
	}
	title := escapeHTML(documentTitle(doc))

	var body strings.Builder
	body.WriteString(`<section class="ad-cover">`)
	if !print {
		body.WriteString(getLogoSVG(64, 64))
	}
	fmt.Fprintf(&body, "\n<h1>%s</h1>\n<dl>\n", title)
	for _, f := range coverFields(doc.Cover) {
		fmt.Fprintf(&body, "<dt>%s</dt><dd>%s</dd>\n", escapeHTML(f[0]), escapeHTML(f[1]))
	}
	body.WriteString("</dl>\n</section>\n")

	if doc.StateMarkup != "" {
		body.WriteString(doc.StateMarkup)
		body.WriteString("\n")
	} else {
		if len(doc.TOC) > 0 {
			body.WriteString("<nav class=\"ad-toc\">\n<h2>Inhoudsopgave</h2>\n<ol>\n")
			for _, entry := range doc.TOC {
				fmt.Fprintf(&body, "<li value=\"%d\"><a href=\"#%s\">%s</a></li>\n",
					entry.Number, createAnchor(entry.SectionID), escapeHTML(entry.Title))
			}
			body.WriteString("</ol>\n</nav>\n")
		}

		for _, s := range doc.Sections {
			fmt.Fprintf(&body, "<section class=\"ad-section\" id=\"%s\" data-section-id=\"%s\">\n",
				createAnchor(s.SectionID), escapeHTML(s.SectionID))
			if !layout.HeadingPolicy().GenerateHeading {
				// modern and professional markup carries no title of its own
				fmt.Fprintf(&body, "<h2 class=\"ad-section-title ad-%s\">%s</h2>\n", layout, escapeHTML(s.Title))
			}
			body.WriteString(s.Markup)
			body.WriteString("\n")
			if s.StructuredMarkup != "" {
				body.WriteString(s.StructuredMarkup)
				body.WriteString("\n")
			}
			body.WriteString("</section>\n")
		}
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
%s
</style>
</head>
<body class="ad-layout-%s">
<main class="ad-document">
%s</main>
</body>
</html>
`, title, assets.ReportCSS, layout, body.String())
}
