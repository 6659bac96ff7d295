package model

// SectionKind selects the extractor used for a section's raw text
type SectionKind string

const (
	KindPersonalInfo     SectionKind = "personal_info"
	KindEmployerInfo     SectionKind = "employer_info"
	KindWorkability      SectionKind = "workability"
	KindMatchingCriteria SectionKind = "matching_criteria"
	KindMedicalInfo      SectionKind = "medical_info"
	KindWorkHistory      SectionKind = "work_history"
	KindSummaryContent   SectionKind = "summary_content"
	KindPlainText        SectionKind = "plain_text"
)

// Record is a typed structured record extracted from a section.
// Exactly one concrete type is active per section; PlainText is the no-match variant.
type Record interface {
	Kind() SectionKind
	// IsEmpty reports whether no field was extracted
	IsEmpty() bool
}

// PersonalInfo describes the employee. Nil fields were not found in the text.
type PersonalInfo struct {
	Name       *string `json:"name,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	Address    *string `json:"address,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	City       *string `json:"city,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
}

func (PersonalInfo) Kind() SectionKind { return KindPersonalInfo }

func (p PersonalInfo) IsEmpty() bool {
	return allNil(p.Name, p.BirthDate, p.Address, p.PostalCode, p.City, p.Phone, p.Email)
}

// EmployerInfo describes the employer and the employee's position
type EmployerInfo struct {
	CompanyName  *string `json:"company_name,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`
	Department   *string `json:"department,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	ContractType *string `json:"contract_type,omitempty"`
}

func (EmployerInfo) Kind() SectionKind { return KindEmployerInfo }

func (e EmployerInfo) IsEmpty() bool {
	return allNil(e.CompanyName, e.JobTitle, e.Department, e.StartDate, e.ContractType)
}

// Workability holds capacity percentages and the capability/restriction split
type Workability struct {
	Percentages  []int    `json:"percentages,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
}

func (Workability) Kind() SectionKind { return KindWorkability }

func (w Workability) IsEmpty() bool {
	return len(w.Percentages) == 0 && len(w.Capabilities) == 0 && len(w.Restrictions) == 0
}

// Priority of a matching criterion
type Priority string

const (
	PriorityEssential Priority = "essential"
	PriorityDesired   Priority = "desired"
	PriorityNormal    Priority = "normal"
)

// MatchingCriterion is one line of a search profile
type MatchingCriterion struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// MatchingCriteria is the search profile for alternative work
type MatchingCriteria struct {
	Criteria []MatchingCriterion `json:"criteria,omitempty"`
}

func (MatchingCriteria) Kind() SectionKind { return KindMatchingCriteria }

func (m MatchingCriteria) IsEmpty() bool { return len(m.Criteria) == 0 }

// MedicalInfo holds the medical situation as far as stated in the text
type MedicalInfo struct {
	Diagnosis *string  `json:"diagnosis,omitempty"`
	OnsetDate *string  `json:"onset_date,omitempty"`
	Symptoms  []string `json:"symptoms,omitempty"`
}

func (MedicalInfo) Kind() SectionKind { return KindMedicalInfo }

func (m MedicalInfo) IsEmpty() bool {
	return m.Diagnosis == nil && m.OnsetDate == nil && len(m.Symptoms) == 0
}

// WorkHistory lists previous positions verbatim
type WorkHistory struct {
	Positions []string `json:"positions,omitempty"`
}

func (WorkHistory) Kind() SectionKind { return KindWorkHistory }

func (w WorkHistory) IsEmpty() bool { return len(w.Positions) == 0 }

// SummaryContent splits summary bullets into key points and recommendations
type SummaryContent struct {
	KeyPoints       []string `json:"key_points,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (SummaryContent) Kind() SectionKind { return KindSummaryContent }

func (s SummaryContent) IsEmpty() bool {
	return len(s.KeyPoints) == 0 && len(s.Recommendations) == 0
}

// PlainText is the no-match variant and carries the input unchanged
type PlainText struct {
	Text string `json:"text"`
}

func (PlainText) Kind() SectionKind { return KindPlainText }

// IsEmpty is always true: plain text carries no typed fields
func (PlainText) IsEmpty() bool { return true }

func allNil(fields ...*string) bool {
	for _, f := range fields {
		if f != nil {
			return false
		}
	}
	return true
}
