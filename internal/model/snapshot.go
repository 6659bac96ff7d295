package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ReportSnapshot mirrors the latest fetched backend record for a report.
// It is a cache for offline rendering, not the source of truth; derived
// sections are always recomputed from Payload.
type ReportSnapshot struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReportID string       `gorm:"size:64;not null;uniqueIndex" json:"report_id"`
	CaseID   string       `gorm:"size:64;index" json:"case_id,omitempty"`
	Title    string       `gorm:"size:512" json:"title"`
	Status   ReportStatus `gorm:"size:20;not null;index" json:"status"`

	// Payload is the complete backend record as JSON, section order preserved
	Payload string `gorm:"type:text;not null" json:"-"`

	FetchedAt    time.Time `gorm:"not null" json:"fetched_at"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
}

// TableName specifies the table name for ReportSnapshot
func (ReportSnapshot) TableName() string {
	return "report_snapshots"
}

// NewReportSnapshot serializes a fetched report into a snapshot row
func NewReportSnapshot(r *Report, fetchedAt time.Time) (*ReportSnapshot, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &ReportSnapshot{
		ReportID:     r.ID,
		CaseID:       r.CaseID,
		Title:        r.Title,
		Status:       r.Status,
		Payload:      string(payload),
		FetchedAt:    fetchedAt,
		ErrorMessage: r.ErrorMessage(),
	}, nil
}

// Report decodes the stored payload
func (s *ReportSnapshot) Report() (*Report, error) {
	var r Report
	if err := json.Unmarshal([]byte(s.Payload), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
