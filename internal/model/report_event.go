package model

import (
	"time"
)

// LogLevel represents the log level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// ReportEvent is a log entry scoped to a report: polls, transitions, exports
type ReportEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ReportID  string `gorm:"size:64;not null;index" json:"report_id"`
	SessionID string `gorm:"size:20;index" json:"session_id,omitempty"`

	Level   LogLevel `gorm:"size:10;not null;index" json:"level"`
	Message string   `gorm:"type:text;not null" json:"message"`
	Fields  JSONMap  `gorm:"type:text" json:"fields,omitempty"`

	// Caller is the file:line of the log call
	Caller string `gorm:"size:255" json:"caller,omitempty"`
}

// TableName specifies the table name for ReportEvent
func (ReportEvent) TableName() string {
	return "report_events"
}

// ReportEventQuery represents query parameters for listing report events
type ReportEventQuery struct {
	ReportID string   `json:"report_id"`
	Level    LogLevel `json:"level,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}
