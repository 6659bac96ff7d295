// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Snapshot() ReportSnapshotStore
	Event() ReportEventStore
	Export() ExportRecordStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db            *gorm.DB
	snapshotStore ReportSnapshotStore
	eventStore    ReportEventStore
	exportStore   ExportRecordStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{
		db:            db,
		snapshotStore: newReportSnapshotStore(db),
		eventStore:    newReportEventStore(db),
		exportStore:   newExportRecordStore(db),
	}
}

func (s *gormStore) Snapshot() ReportSnapshotStore {
	return s.snapshotStore
}

func (s *gormStore) Event() ReportEventStore {
	return s.eventStore
}

func (s *gormStore) Export() ExportRecordStore {
	return s.exportStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(newGormStore(tx))
	})
}
