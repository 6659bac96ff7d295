package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/pkg/logger"
)

const (
	// DefaultEventRetention is how long report events are kept
	DefaultEventRetention = 30 * 24 * time.Hour
	// EventCleanupSchedule is the cron schedule for event cleanup (daily at 3 AM)
	EventCleanupSchedule = "0 3 * * *"
)

// EventCleanupService periodically removes old report events
type EventCleanupService struct {
	store     ReportEventStore
	cron      *cron.Cron
	retention time.Duration
	entryID   cron.EntryID
	mu        sync.RWMutex
}

// NewEventCleanupService creates a new cleanup service
func NewEventCleanupService(store ReportEventStore, retention time.Duration) *EventCleanupService {
	if retention <= 0 {
		retention = DefaultEventRetention
	}

	return &EventCleanupService{
		store:     store,
		cron:      cron.New(),
		retention: retention,
	}
}

// Start schedules the cleanup job and runs one pass immediately
func (s *EventCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(EventCleanupSchedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule report event cleanup", zap.Error(err))
		return err
	}
	s.entryID = entryID

	s.cron.Start()

	logger.Info("Report event cleanup service started",
		zap.String("schedule", EventCleanupSchedule),
		zap.Duration("retention", s.retention),
	)

	go s.cleanup()

	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *EventCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Report event cleanup service stopped")
	}
}

// SetRetention updates the retention period (takes effect on next cleanup)
func (s *EventCleanupService) SetRetention(retention time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if retention <= 0 {
		retention = DefaultEventRetention
	}
	s.retention = retention
}

// Retention returns the current retention period
func (s *EventCleanupService) Retention() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retention
}

func (s *EventCleanupService) cleanup() {
	retention := s.Retention()
	startTime := time.Now()

	deleted, err := s.store.DeleteOlderThan(retention)
	if err != nil {
		logger.Error("Failed to cleanup old report events",
			zap.Duration("retention", retention),
			zap.Error(err),
		)
		return
	}

	logger.Info("Report event cleanup completed",
		zap.Int64("deleted_count", deleted),
		zap.Duration("duration", time.Since(startTime)),
	)
}
