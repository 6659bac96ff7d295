package model

import (
	"time"

	"gorm.io/gorm"
)

// ExportKind distinguishes downloads from previews
type ExportKind string

const (
	ExportKindExport  ExportKind = "export"
	ExportKindPreview ExportKind = "preview"
)

// ExportStatus is the outcome of an export request
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportRecord keeps an audit trail of export and preview requests
type ExportRecord struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReportID string       `gorm:"size:64;not null;index" json:"report_id"`
	Kind     ExportKind   `gorm:"size:20;not null" json:"kind"`
	Format   string       `gorm:"size:20" json:"format,omitempty"`
	Layout   Layout       `gorm:"size:20;not null" json:"layout"`
	Mode     string       `gorm:"size:20;not null" json:"mode"` // backend or local
	Status   ExportStatus `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Location is the output path (local) or URL returned by the backend
	Location string `gorm:"size:1024" json:"location,omitempty"`
	Size     int64  `json:"size,omitempty"`

	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Duration     int64      `json:"duration,omitempty"` // milliseconds
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
}

// TableName specifies the table name for ExportRecord
func (ExportRecord) TableName() string {
	return "export_records"
}
