package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/adreport/internal/model"
)

// ReportEventStore defines operations for ReportEvent model.
// It also implements logger.ReportEventWriter so the logger hook can persist
// report-scoped entries directly.
type ReportEventStore interface {
	// WriteEvents implements logger.ReportEventWriter for batch writing.
	WriteEvents(events []model.ReportEvent) error

	Create(event *model.ReportEvent) error
	// List returns events for a report in chronological order with the total count
	List(query model.ReportEventQuery) ([]model.ReportEvent, int64, error)
	// ListLatest returns the latest N events for a report, oldest first
	ListLatest(reportID string, limit int) ([]model.ReportEvent, error)
	DeleteByReportID(reportID string) error
	// DeleteOlderThan removes events created before now minus age
	DeleteOlderThan(age time.Duration) (int64, error)
	CountByReportID(reportID string) (int64, error)
}

// reportEventStore implements ReportEventStore using GORM.
type reportEventStore struct {
	db *gorm.DB
}

func newReportEventStore(db *gorm.DB) ReportEventStore {
	return &reportEventStore{db: db}
}

// NewReportEventStore creates a ReportEventStore outside of a Store aggregate.
func NewReportEventStore(db *gorm.DB) ReportEventStore {
	return newReportEventStore(db)
}

func (s *reportEventStore) WriteEvents(events []model.ReportEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Create(&events).Error
}

func (s *reportEventStore) Create(event *model.ReportEvent) error {
	return s.db.Create(event).Error
}

func (s *reportEventStore) List(query model.ReportEventQuery) ([]model.ReportEvent, int64, error) {
	var events []model.ReportEvent
	var total int64

	q := s.db.Model(&model.ReportEvent{}).Where("report_id = ?", query.ReportID)
	if query.Level != "" {
		q = q.Where("level IN ?", levelsAtAndAbove(query.Level))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("created_at ASC").Order("id ASC")
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	err := q.Find(&events).Error
	return events, total, err
}

func (s *reportEventStore) ListLatest(reportID string, limit int) ([]model.ReportEvent, error) {
	var events []model.ReportEvent
	err := s.db.Where("report_id = ?", reportID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&events).Error

	// Reverse the slice to return in chronological order
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, err
}

func (s *reportEventStore) DeleteByReportID(reportID string) error {
	return s.db.Where("report_id = ?", reportID).Delete(&model.ReportEvent{}).Error
}

func (s *reportEventStore) DeleteOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	result := s.db.Where("created_at < ?", cutoff).Delete(&model.ReportEvent{})
	return result.RowsAffected, result.Error
}

func (s *reportEventStore) CountByReportID(reportID string) (int64, error) {
	var count int64
	err := s.db.Model(&model.ReportEvent{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	return count, err
}

// levelsAtAndAbove returns all log levels at or above the specified level.
// Level priority: debug < info < warn < error < fatal
func levelsAtAndAbove(level model.LogLevel) []model.LogLevel {
	all := []model.LogLevel{
		model.LogLevelDebug, model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal,
	}
	for i, l := range all {
		if l == level {
			return all[i:]
		}
	}
	return all
}
