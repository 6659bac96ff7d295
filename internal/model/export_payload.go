package model

import "time"

// CoverPage is the first page of an exported report
type CoverPage struct {
	Title        string       `json:"title"`
	ReportID     string       `json:"report_id"`
	CaseID       string       `json:"case_id,omitempty"`
	CaseTitle    string       `json:"case_title,omitempty"`
	EmployeeName string       `json:"employee_name,omitempty"`
	EmployerName string       `json:"employer_name,omitempty"`
	Advisor      *UserProfile `json:"advisor,omitempty"`
	Status       ReportStatus `json:"status"`
	Date         time.Time    `json:"date"`
}

// TOCEntry is one line of the exported table of contents
type TOCEntry struct {
	Number    int    `json:"number"`
	SectionID string `json:"section_id"`
	Title     string `json:"title"`
}

// ExportSection is one section of an exported report
type ExportSection struct {
	Number    int    `json:"number"`
	SectionID string `json:"section_id"`
	Title     string `json:"title"`
	// Markup is the rendered section body for the chosen layout
	Markup string `json:"rendered_markup"`
	// RawContent is the section content as received from the backend
	RawContent string `json:"raw_content"`
	Format     string `json:"format"`
	IsHTML     bool   `json:"is_html"`
	// StructuredMarkup is the typed record view, empty for plain text sections
	StructuredMarkup string `json:"structured_markup,omitempty"`
}

// ExportPayload is the complete document handed to an export service
type ExportPayload struct {
	ReportID    string          `json:"report_id"`
	Layout      Layout          `json:"layout"`
	Cover       CoverPage       `json:"cover"`
	TOC         []TOCEntry      `json:"toc"`
	Sections    []ExportSection `json:"sections"`
	Structured  map[string]any  `json:"structured,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	// StateMarkup replaces the sections for failed or empty reports
	StateMarkup string `json:"state_markup,omitempty"`
}
