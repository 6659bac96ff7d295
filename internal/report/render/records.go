package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
)

// Dutch display labels of record fields
const (
	labelName         = "Naam"
	labelBirthDate    = "Geboortedatum"
	labelAddress      = "Adres"
	labelPostalCode   = "Postcode"
	labelCity         = "Woonplaats"
	labelPhone        = "Telefoon"
	labelEmail        = "E-mail"
	labelCompany      = "Werkgever"
	labelJobTitle     = "Functie"
	labelDepartment   = "Afdeling"
	labelStartDate    = "In dienst sinds"
	labelContractType = "Dienstverband"
	labelPercentages  = "Belastbaarheid"
	labelCapabilities = "Mogelijkheden"
	labelRestrictions = "Beperkingen"
	labelCriteria     = "Zoekcriteria"
	labelDiagnosis    = "Diagnose"
	labelOnsetDate    = "Ontstaan"
	labelSymptoms     = "Klachten"
	labelPositions    = "Functies"
	labelKeyPoints    = "Kernpunten"
	labelRecs         = "Aanbevelingen"
)

var priorityLabels = map[model.Priority]string{
	model.PriorityEssential: "essentieel",
	model.PriorityDesired:   "wenselijk",
	model.PriorityNormal:    "",
}

// RenderRecord renders a structured record for the structured display mode.
// Unset fields show an explicit unknown placeholder. PlainText and nil
// records render as escaped paragraphs of their text.
func RenderRecord(rec model.Record, layout model.Layout) string {
	var b recordBuilder
	b.open(rec, layout)

	switch r := rec.(type) {
	case model.PersonalInfo:
		b.field(labelName, r.Name)
		b.field(labelBirthDate, r.BirthDate)
		b.field(labelAddress, r.Address)
		b.field(labelPostalCode, r.PostalCode)
		b.field(labelCity, r.City)
		b.field(labelPhone, r.Phone)
		b.field(labelEmail, r.Email)
	case model.EmployerInfo:
		b.field(labelCompany, r.CompanyName)
		b.field(labelJobTitle, r.JobTitle)
		b.field(labelDepartment, r.Department)
		b.field(labelStartDate, r.StartDate)
		b.field(labelContractType, r.ContractType)
	case model.Workability:
		pct := make([]string, len(r.Percentages))
		for i, p := range r.Percentages {
			pct[i] = strconv.Itoa(p) + "%"
		}
		b.list(labelPercentages, pct)
		b.list(labelCapabilities, r.Capabilities)
		b.list(labelRestrictions, r.Restrictions)
	case model.MatchingCriteria:
		items := make([]string, len(r.Criteria))
		for i, c := range r.Criteria {
			items[i] = c.Text
			if label := priorityLabels[c.Priority]; label != "" {
				items[i] += " (" + label + ")"
			}
		}
		b.list(labelCriteria, items)
	case model.MedicalInfo:
		b.field(labelDiagnosis, r.Diagnosis)
		b.field(labelOnsetDate, r.OnsetDate)
		b.list(labelSymptoms, r.Symptoms)
	case model.WorkHistory:
		b.list(labelPositions, r.Positions)
	case model.SummaryContent:
		b.list(labelKeyPoints, r.KeyPoints)
		b.list(labelRecs, r.Recommendations)
	case model.PlainText:
		return Paragraphs(r.Text)
	default:
		return ""
	}

	b.close()
	return b.String()
}

type recordBuilder struct {
	strings.Builder
}

func (b *recordBuilder) open(rec model.Record, layout model.Layout) {
	if rec == nil {
		return
	}
	fmt.Fprintf(b, `<dl class="ad-record ad-record-%s ad-%s">`, rec.Kind(), layout)
	b.WriteString("\n")
}

func (b *recordBuilder) close() {
	b.WriteString("</dl>")
}

func (b *recordBuilder) field(label string, v *string) {
	value := consts.UnknownValue
	class := "ad-unknown"
	if v != nil && strings.TrimSpace(*v) != "" {
		value, class = *v, ""
	}
	fmt.Fprintf(b, "<dt>%s</dt><dd", html.EscapeString(label))
	if class != "" {
		fmt.Fprintf(b, ` class="%s"`, class)
	}
	fmt.Fprintf(b, ">%s</dd>\n", html.EscapeString(value))
}

func (b *recordBuilder) list(label string, items []string) {
	fmt.Fprintf(b, "<dt>%s</dt>", html.EscapeString(label))
	if len(items) == 0 {
		fmt.Fprintf(b, "<dd class=\"ad-unknown\">%s</dd>\n", consts.UnknownValue)
		return
	}
	b.WriteString("<dd><ul>")
	for _, it := range items {
		fmt.Fprintf(b, "<li>%s</li>", html.EscapeString(it))
	}
	b.WriteString("</ul></dd>\n")
}
