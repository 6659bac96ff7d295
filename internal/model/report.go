// Package model defines the data models for the application.
package model

import (
	"time"
)

// ReportStatus represents the generation status reported by the backend
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusGenerating ReportStatus = "generating"
	ReportStatusGenerated  ReportStatus = "generated"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// statusRank orders statuses along the generation lifecycle.
// Terminal statuses share the highest rank.
var statusRank = map[ReportStatus]int{
	ReportStatusQueued:     0,
	ReportStatusProcessing: 1,
	ReportStatusGenerating: 2,
	ReportStatusGenerated:  3,
	ReportStatusCompleted:  3,
	ReportStatusFailed:     3,
}

// Rank returns the lifecycle rank of the status, or -1 when unknown
func (s ReportStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// IsValid reports whether the status is one the lifecycle knows about
func (s ReportStatus) IsValid() bool {
	return s.Rank() >= 0
}

// IsTerminal reports whether polling must stop at this status
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusGenerated || s == ReportStatusCompleted || s == ReportStatusFailed
}

// HasContent reports whether the report content is final and renderable
func (s ReportStatus) HasContent() bool {
	return s == ReportStatusGenerated || s == ReportStatusCompleted
}

// Accepts reports whether moving from s to next is a forward (or same-rank) transition.
// An empty current status accepts any known status.
func (s ReportStatus) Accepts(next ReportStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == "" {
		return true
	}
	if s.IsTerminal() {
		return next == s
	}
	return next.Rank() >= s.Rank()
}

// SectionMeta holds backend metadata for one section
type SectionMeta struct {
	ChunkIDs []string `json:"chunk_ids,omitempty"`
	// Title is the template-provided section title, if any
	Title string `json:"title,omitempty"`
}

// UserProfile is the advisor profile attached to the report by the backend
type UserProfile struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	Certification  string `json:"certification,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	CompanyAddress string `json:"company_address,omitempty"`
}

// FullName returns the display name, or first and last name joined
func (p *UserProfile) FullName() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// ReportMetadata carries section bookkeeping and the advisor profile
type ReportMetadata struct {
	Sections    map[string]SectionMeta `json:"sections,omitempty"`
	UserProfile *UserProfile           `json:"user_profile,omitempty"`
}

// SectionTitle returns the template-provided title for a section
func (m ReportMetadata) SectionTitle(id string) string {
	return m.Sections[id].Title
}

// Report is the report record as returned by the generation backend.
// It is replaced wholesale on every successful poll.
type Report struct {
	ID         string         `json:"id"`
	Status     ReportStatus   `json:"status"`
	CaseID     string         `json:"case_id"`
	TemplateID string         `json:"template_id,omitempty"`
	Title      string         `json:"title"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Error      *string        `json:"error,omitempty"`
	Metadata   ReportMetadata `json:"metadata"`
	Content    ReportContent  `json:"content"`
}

// ErrorMessage returns the backend error text, or empty if none
func (r *Report) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}

// CaseContext carries what the surrounding application knows about the case.
// It feeds placeholder records and export cover pages.
type CaseContext struct {
	CaseTitle    string `json:"case_title,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	EmployerName string `json:"employer_name,omitempty"`
}
