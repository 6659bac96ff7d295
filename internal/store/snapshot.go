package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verustcode/adreport/internal/model"
)

// ReportSnapshotStore defines operations for the ReportSnapshot mirror.
// Each report id has at most one row; Upsert replaces it wholesale.
type ReportSnapshotStore interface {
	// Upsert stores the latest fetched report, replacing any previous snapshot
	Upsert(report *model.Report, fetchedAt time.Time) (*model.ReportSnapshot, error)
	GetByReportID(reportID string) (*model.ReportSnapshot, error)
	// LoadReport decodes the stored payload of a snapshot
	LoadReport(reportID string) (*model.Report, error)
	List(status model.ReportStatus, page, pageSize int) ([]model.ReportSnapshot, int64, error)
	ListByCase(caseID string) ([]model.ReportSnapshot, error)
	// ListUnfinished returns snapshots whose report was not terminal when last fetched
	ListUnfinished() ([]model.ReportSnapshot, error)
	Delete(reportID string) error
	CountAll() (int64, error)
}

// reportSnapshotStore implements ReportSnapshotStore using GORM.
type reportSnapshotStore struct {
	db *gorm.DB
}

func newReportSnapshotStore(db *gorm.DB) ReportSnapshotStore {
	return &reportSnapshotStore{db: db}
}

func (s *reportSnapshotStore) Upsert(report *model.Report, fetchedAt time.Time) (*model.ReportSnapshot, error) {
	snap, err := model.NewReportSnapshot(report, fetchedAt)
	if err != nil {
		return nil, err
	}

	// Soft-deleted rows still hold the unique index, so restore them on conflict.
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "report_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"case_id", "title", "status", "payload", "fetched_at", "error_message", "updated_at", "deleted_at",
		}),
	}).Create(snap).Error
	if err != nil {
		return nil, err
	}
	return s.GetByReportID(report.ID)
}

func (s *reportSnapshotStore) GetByReportID(reportID string) (*model.ReportSnapshot, error) {
	var snap model.ReportSnapshot
	if err := s.db.Where("report_id = ?", reportID).First(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *reportSnapshotStore) LoadReport(reportID string) (*model.Report, error) {
	snap, err := s.GetByReportID(reportID)
	if err != nil {
		return nil, err
	}
	return snap.Report()
}

func (s *reportSnapshotStore) List(status model.ReportStatus, page, pageSize int) ([]model.ReportSnapshot, int64, error) {
	var snaps []model.ReportSnapshot
	var total int64

	query := s.db.Model(&model.ReportSnapshot{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	err := query.Order("fetched_at DESC").Offset(offset).Limit(pageSize).Find(&snaps).Error
	return snaps, total, err
}

func (s *reportSnapshotStore) ListUnfinished() ([]model.ReportSnapshot, error) {
	var snaps []model.ReportSnapshot
	err := s.db.Where("status IN ?", []model.ReportStatus{
		model.ReportStatusQueued,
		model.ReportStatusProcessing,
		model.ReportStatusGenerating,
	}).Order("fetched_at ASC").Find(&snaps).Error
	return snaps, err
}

func (s *reportSnapshotStore) ListByCase(caseID string) ([]model.ReportSnapshot, error) {
	var snaps []model.ReportSnapshot
	err := s.db.Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&snaps).Error
	return snaps, err
}

func (s *reportSnapshotStore) Delete(reportID string) error {
	return s.db.Where("report_id = ?", reportID).Delete(&model.ReportSnapshot{}).Error
}

func (s *reportSnapshotStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&model.ReportSnapshot{}).Count(&count).Error
	return count, err
}
