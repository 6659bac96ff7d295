package exporter

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/assets"
)

// h1Line matches a markdown level-1 heading line
var h1Line = regexp.MustCompile(`(?m)^[ \t]*#[ \t]+[^\n]*\n?`)

// stripLevelOneHeadings removes markdown h1 lines; exports add their own numbered heading
func stripLevelOneHeadings(s string) string {
	return strings.TrimSpace(h1Line.ReplaceAllString(s, ""))
}

// createAnchor creates an anchor-friendly ID from a section id
func createAnchor(sectionID string) string {
	anchor := strings.ToLower(sectionID)
	anchor = strings.ReplaceAll(anchor, " ", "-")
	anchor = strings.ReplaceAll(anchor, "_", "-")
	anchor = strings.ReplaceAll(anchor, "/", "-")
	return "sectie-" + anchor
}

// getLogoSVG returns the logo SVG with specified width and height
func getLogoSVG(width, height int) string {
	logoContent := strings.TrimSpace(assets.LogoSVG)
	return strings.Replace(logoContent, `<svg xmlns="http://www.w3.org/2000/svg"`,
		fmt.Sprintf(`<svg class="ad-logo" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg"`, width, height), 1)
}

// coverFields lists the labelled cover values in display order, skipping blanks
func coverFields(c model.CoverPage) [][2]string {
	var fields [][2]string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, [2]string{label, value})
		}
	}
	add("Dossier", c.CaseTitle)
	add("Werknemer", c.EmployeeName)
	add("Werkgever", c.EmployerName)
	if c.Advisor != nil {
		add("Arbeidsdeskundige", c.Advisor.FullName())
		add("Functie", c.Advisor.JobTitle)
		add("Registratie", c.Advisor.Certification)
		add("Organisatie", c.Advisor.CompanyName)
	}
	add("Status", statusLabel(c.Status))
	if !c.Date.IsZero() {
		add("Datum", formatDutchDate(c.Date.Day(), int(c.Date.Month()), c.Date.Year()))
	}
	return fields
}

var statusLabels = map[model.ReportStatus]string{
	model.ReportStatusQueued:     "In wachtrij",
	model.ReportStatusProcessing: "In behandeling",
	model.ReportStatusGenerating: "Wordt gegenereerd",
	model.ReportStatusGenerated:  "Gegenereerd",
	model.ReportStatusCompleted:  "Afgerond",
	model.ReportStatusFailed:     "Mislukt",
}

func statusLabel(s model.ReportStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

var dutchMonths = [...]string{"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december"}

func formatDutchDate(day, month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d-%02d-%d", day, month, year)
	}
	return fmt.Sprintf("%d %s %d", day, dutchMonths[month-1], year)
}

// documentTitle returns the cover title or the project name
func documentTitle(doc *model.ExportPayload) string {
	if t := strings.TrimSpace(doc.Cover.Title); t != "" {
		return t
	}
	return consts.ProjectName
}

// entityLabel turns an entity or field key into a display label
func entityLabel(key string) string {
	return cases.Title(language.Dutch).String(strings.ReplaceAll(key, "_", " "))
}

// escapeHTML escapes text for element content and attributes
func escapeHTML(s string) string {
	return html.EscapeString(s)
}
