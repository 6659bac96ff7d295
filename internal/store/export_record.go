package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/adreport/internal/model"
)

// ExportRecordStore defines operations for ExportRecord model.
type ExportRecordStore interface {
	Create(record *model.ExportRecord) error
	GetByID(id string) (*model.ExportRecord, error)
	// MarkCompleted stores the result location and size
	MarkCompleted(id, location string, size int64, duration time.Duration) error
	MarkFailed(id string, errMsg string, duration time.Duration) error
	ListByReportID(reportID string, limit int) ([]model.ExportRecord, error)
	// CountPending counts unfinished requests for a report
	CountPending(reportID string) (int64, error)
}

// exportRecordStore implements ExportRecordStore using GORM.
type exportRecordStore struct {
	db *gorm.DB
}

func newExportRecordStore(db *gorm.DB) ExportRecordStore {
	return &exportRecordStore{db: db}
}

func (s *exportRecordStore) Create(record *model.ExportRecord) error {
	if record.Status == "" {
		record.Status = model.ExportStatusPending
	}
	return s.db.Create(record).Error
}

func (s *exportRecordStore) GetByID(id string) (*model.ExportRecord, error) {
	var record model.ExportRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *exportRecordStore) MarkCompleted(id, location string, size int64, duration time.Duration) error {
	now := time.Now()
	return s.db.Model(&model.ExportRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":       model.ExportStatusCompleted,
		"location":     location,
		"size":         size,
		"completed_at": &now,
		"duration":     duration.Milliseconds(),
	}).Error
}

func (s *exportRecordStore) MarkFailed(id string, errMsg string, duration time.Duration) error {
	now := time.Now()
	return s.db.Model(&model.ExportRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":        model.ExportStatusFailed,
		"error_message": errMsg,
		"completed_at":  &now,
		"duration":      duration.Milliseconds(),
	}).Error
}

func (s *exportRecordStore) ListByReportID(reportID string, limit int) ([]model.ExportRecord, error) {
	var records []model.ExportRecord
	q := s.db.Where("report_id = ?", reportID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

func (s *exportRecordStore) CountPending(reportID string) (int64, error) {
	var count int64
	err := s.db.Model(&model.ExportRecord{}).
		Where("report_id = ? AND status = ?", reportID, model.ExportStatusPending).
		Count(&count).Error
	return count, err
}
