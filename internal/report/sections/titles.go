package sections

import (
	"strings"

	"github.com/verustcode/adreport/internal/model"
)

var professionalTitles = map[string]string{
	"samenvatting":            "Samenvatting",
	"vraagstelling":           "Vraagstelling",
	"ondernomen_activiteiten": "Ondernomen activiteiten",
	"gegevens_werknemer":      "Gegevens werknemer",
	"gegevens_werkgever":      "Gegevens werkgever",
	"functieomschrijving":     "Functieomschrijving",
	"arbeidsverleden":         "Arbeidsverleden en opleiding",
	"medische_situatie":       "Medische situatie",
	"belastbaarheid":          "Belastbaarheid",
	"gesprek_werkgever":       "Gesprek met de werkgever",
	"gesprek_werknemer":       "Gesprek met de werknemer",
	"visie_arbeidsdeskundige": "Visie arbeidsdeskundige",
	"geschiktheid_eigen_werk": "Geschiktheid eigen werk",
	"geschiktheid_ander_werk": "Geschiktheid ander werk",
	"zoekprofiel":             "Zoekprofiel",
	"advies":                  "Advies",
	"conclusie":               "Conclusie",
	"vervolg":                 "Vervolg",
}

var legacyTitles = map[string]string{
	"samenvatting":            "Samenvatting",
	"vraagstelling":           "Vraagstelling",
	"ondernomen_activiteiten": "Ondernomen activiteiten",
	"gegevens_werkgever":      "Gegevens werkgever",
	"gegevens_werknemer":      "Gegevens werknemer",
	"belastbaarheid":          "Belastbaarheid werknemer",
	"eigen_functie":           "Eigen functie",
	"gesprek_werkgever":       "Gesprek werkgever",
	"gesprek_werknemer":       "Gesprek werknemer",
	"visie_ad":                "Visie arbeidsdeskundige",
	"advies":                  "Advies",
	"conclusie":               "Conclusie",
	"vervolg":                 "Vervolg",
}

// untitled is used only for an empty section id
const untitled = "Sectie"

// Title resolves the display title of a section: professional title, then
// legacy title, then the template-provided title, then the raw id.
// The result is never empty.
func Title(id, templateTitle string) string {
	if t, ok := professionalTitles[id]; ok {
		return t
	}
	if t, ok := legacyTitles[id]; ok {
		return t
	}
	if t := strings.TrimSpace(templateTitle); t != "" {
		return t
	}
	if id != "" {
		return id
	}
	return untitled
}

// Build turns a report into its ordered sections with canonical titles.
// records supplies the structured record per section id and may be nil;
// sections without a record get a PlainText record of their raw content.
func Build(report *model.Report, records map[string]model.Record) []model.Section {
	if report == nil {
		return nil
	}

	ids := Order(report.Content.Keys())
	out := make([]model.Section, 0, len(ids))
	for i, id := range ids {
		sc, _ := report.Content.Section(id)

		rec, ok := records[id]
		if !ok || rec == nil {
			rec = model.PlainText{Text: sc.Text}
		}

		out = append(out, model.Section{
			ID:             id,
			CanonicalTitle: Title(id, report.Metadata.SectionTitle(id)),
			RawContent:     sc.Text,
			Format:         sc.EffectiveFormat(),
			IsHTML:         sc.IsHTML,
			Parsed:         rec,
			OrderIndex:     i,
		})
	}
	return out
}

// TableOfContents lists ordered section ids with their titles
func TableOfContents(report *model.Report) []Entry {
	if report == nil {
		return nil
	}
	ids := Order(report.Content.Keys())
	toc := make([]Entry, len(ids))
	for i, id := range ids {
		toc[i] = Entry{
			Number: i + 1,
			ID:     id,
			Title:  Title(id, report.Metadata.SectionTitle(id)),
		}
	}
	return toc
}

// Entry is one line of a table of contents
type Entry struct {
	Number int    `json:"number"`
	ID     string `json:"section_id"`
	Title  string `json:"title"`
}

// First returns the first section id in display order, or empty
func First(report *model.Report) string {
	if report == nil {
		return ""
	}
	ids := Order(report.Content.Keys())
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
