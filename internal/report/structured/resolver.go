// Package structured chooses where a report's structured data comes from:
// backend-confirmed structured_data, the content parser, or placeholders
// synthesized from context that is already known.
package structured

import (
	"encoding/json"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/parser"
)

// Source tells which step of the cascade produced a Resolution
type Source string

const (
	SourceBackend     Source = "backend"
	SourceParsed      Source = "parsed"
	SourcePlaceholder Source = "placeholder"
)

// Entity keys of the resolved structured map
const (
	EntityEmployee      = "employee"
	EntityEmployer      = "employer"
	EntityAdvisor       = "advisor"
	EntityInvestigation = "investigation"
	EntityMedical       = "medical"
	EntityWorkability   = "workability"
	EntityMatching      = "matching"
	EntityHistory       = "history"
	EntitySummary       = "summary"
)

// entitySections maps entities to the canonical section that holds them
var entitySections = []struct {
	entity  string
	section string
	kind    model.SectionKind
}{
	{EntityEmployee, "gegevens_werknemer", model.KindPersonalInfo},
	{EntityEmployer, "gegevens_werkgever", model.KindEmployerInfo},
	{EntityMedical, "medische_situatie", model.KindMedicalInfo},
	{EntityWorkability, "belastbaarheid", model.KindWorkability},
	{EntityMatching, "zoekprofiel", model.KindMatchingCriteria},
	{EntityHistory, "arbeidsverleden", model.KindWorkHistory},
	{EntitySummary, "samenvatting", model.KindSummaryContent},
}

// Resolution is the structured view of one report
type Resolution struct {
	Source Source `json:"source"`
	// Records holds the structured record per section id
	Records map[string]model.Record `json:"records"`
	// Entities is the structured map keyed by domain entity
	Entities map[string]any `json:"entities"`
	// SchemaViolations lists advisory schema problems in backend data
	SchemaViolations []string `json:"schema_violations,omitempty"`
}

// Record returns the record for a section, nil when none was resolved
func (r *Resolution) Record(sectionID string) model.Record {
	if r == nil {
		return nil
	}
	return r.Records[sectionID]
}

// Resolve runs the cascade for the whole report; the first applicable step wins.
// It never modifies report.
func Resolve(report *model.Report, cc model.CaseContext) *Resolution {
	if report == nil {
		return &Resolution{Source: SourcePlaceholder, Records: map[string]model.Record{}, Entities: map[string]any{}}
	}

	if report.Content.HasStructuredData() {
		return fromBackend(report)
	}
	if res, ok := fromParser(report); ok {
		return res
	}
	return placeholder(report, cc)
}

// fromBackend uses structured_data verbatim as the entity map.
// Records are decoded from entities that belong to a section.
func fromBackend(report *model.Report) *Resolution {
	data := report.Content.StructuredData()
	res := &Resolution{
		Source:           SourceBackend,
		Records:          make(map[string]model.Record),
		Entities:         data,
		SchemaViolations: Validate(data),
	}

	for _, es := range entitySections {
		v, ok := data[es.entity]
		if !ok || v == nil {
			continue
		}
		if rec, ok := decodeRecord(v, es.kind); ok {
			res.Records[es.section] = rec
		}
	}
	return res
}

func decodeRecord(v any, kind model.SectionKind) (model.Record, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}

	switch kind {
	case model.KindPersonalInfo:
		return decodeAs[model.PersonalInfo](raw)
	case model.KindEmployerInfo:
		return decodeAs[model.EmployerInfo](raw)
	case model.KindMedicalInfo:
		return decodeAs[model.MedicalInfo](raw)
	case model.KindWorkability:
		return decodeAs[model.Workability](raw)
	case model.KindMatchingCriteria:
		return decodeAs[model.MatchingCriteria](raw)
	case model.KindWorkHistory:
		return decodeAs[model.WorkHistory](raw)
	case model.KindSummaryContent:
		return decodeAs[model.SummaryContent](raw)
	}
	return nil, false
}

func decodeAs[T model.Record](raw []byte) (model.Record, bool) {
	var r T
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	return r, true
}

// fromParser parses every section. It applies only when at least one
// section yields a non-empty typed record.
func fromParser(report *model.Report) (*Resolution, bool) {
	records := make(map[string]model.Record, report.Content.Len())
	applicable := false

	for _, id := range report.Content.Keys() {
		sc, _ := report.Content.Section(id)
		if sc.IsHTML {
			records[id] = model.PlainText{Text: sc.Text}
			continue
		}
		rec := parser.ParseSection(id, sc.Text)
		records[id] = rec
		if rec.Kind() != model.KindPlainText && !rec.IsEmpty() {
			applicable = true
		}
	}
	if !applicable {
		return nil, false
	}

	entities := make(map[string]any)
	for _, es := range entitySections {
		if rec, ok := records[es.section]; ok && rec.Kind() == es.kind {
			entities[es.entity] = rec
		}
	}
	if advisor := advisorEntity(report.Metadata.UserProfile, false); advisor != nil {
		entities[EntityAdvisor] = advisor
	}
	entities[EntityInvestigation] = investigationEntity(report, model.CaseContext{})

	return &Resolution{Source: SourceParsed, Records: records, Entities: entities}, true
}

// placeholder builds records from context only. Everything not known is
// marked as to be determined.
func placeholder(report *model.Report, cc model.CaseContext) *Resolution {
	tbd := func(v string) *string {
		if v == "" {
			v = consts.ToBeDetermined
		}
		return &v
	}

	employerName := cc.EmployerName
	if employerName == "" {
		employerName = cc.CaseTitle
	}

	employee := model.PersonalInfo{
		Name: tbd(cc.EmployeeName), BirthDate: tbd(""), Address: tbd(""),
		PostalCode: tbd(""), City: tbd(""), Phone: tbd(""), Email: tbd(""),
	}
	employer := model.EmployerInfo{
		CompanyName: tbd(employerName), JobTitle: tbd(""), Department: tbd(""),
		StartDate: tbd(""), ContractType: tbd(""),
	}

	records := map[string]model.Record{}
	for _, id := range report.Content.Keys() {
		sc, _ := report.Content.Section(id)
		switch parser.DetectKind(id) {
		case model.KindPersonalInfo:
			records[id] = employee
		case model.KindEmployerInfo:
			records[id] = employer
		default:
			records[id] = model.PlainText{Text: sc.Text}
		}
	}

	return &Resolution{
		Source:  SourcePlaceholder,
		Records: records,
		Entities: map[string]any{
			EntityEmployee:      employee,
			EntityEmployer:      employer,
			EntityAdvisor:       advisorEntity(report.Metadata.UserProfile, true),
			EntityInvestigation: investigationEntity(report, cc),
		},
	}
}

// advisorEntity describes the advisor from the user profile.
// With markUnknown set, missing fields carry the to-be-determined marker.
func advisorEntity(p *model.UserProfile, markUnknown bool) map[string]string {
	if p == nil && !markUnknown {
		return nil
	}
	if p == nil {
		p = &model.UserProfile{}
	}

	fields := map[string]string{
		"name":          p.FullName(),
		"job_title":     p.JobTitle,
		"certification": p.Certification,
		"email":         p.Email,
		"phone":         p.Phone,
		"company_name":  p.CompanyName,
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch {
		case v != "":
			out[k] = v
		case markUnknown:
			out[k] = consts.ToBeDetermined
		}
	}
	return out
}

func investigationEntity(report *model.Report, cc model.CaseContext) map[string]string {
	out := map[string]string{
		"report_id":    report.ID,
		"report_title": report.Title,
		"status":       string(report.Status),
	}
	if !report.CreatedAt.IsZero() {
		out["report_date"] = report.CreatedAt.Format("02-01-2006")
	} else {
		out["report_date"] = consts.ToBeDetermined
	}
	if report.Title == "" {
		out["report_title"] = consts.ToBeDetermined
	}
	if cc.CaseTitle != "" {
		out["case_title"] = cc.CaseTitle
	}
	if report.CaseID != "" {
		out["case_id"] = report.CaseID
	}
	return out
}
