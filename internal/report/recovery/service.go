// Package recovery resumes polling for reports that were still generating
// when the server last stopped.
package recovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/logger"
)

// defaultMaxAge applies when the configured max age is not positive
const defaultMaxAge = 24 * time.Hour

// SessionOpener opens a polling session for a report
type SessionOpener interface {
	Open(ctx context.Context, reportID string, opts *session.ViewOptions) (*session.Session, error)
}

// Result counts what a resume pass did
type Result struct {
	Total   int `json:"total"`
	Resumed int `json:"resumed"`
	Stale   int `json:"stale"`
	Failed  int `json:"failed"`
}

// Service reopens sessions for unfinished mirrored reports
type Service struct {
	cfg    config.PollerConfig
	store  store.Store
	opener SessionOpener
	now    func() time.Time
}

// NewService creates a new recovery service
func NewService(cfg config.PollerConfig, s store.Store, opener SessionOpener) *Service {
	return &Service{
		cfg:    cfg,
		store:  s,
		opener: opener,
		now:    time.Now,
	}
}

// Resume opens a session for every mirrored report that was not terminal
// when last fetched. Reports fetched longer ago than the max age are left
// alone; the backend has most likely moved on without us.
func (s *Service) Resume(ctx context.Context) Result {
	var res Result

	snaps, err := s.store.Snapshot().ListUnfinished()
	if err != nil {
		logger.Error("Failed to query unfinished reports for recovery", zap.Error(err))
		return res
	}

	res.Total = len(snaps)
	if res.Total == 0 {
		logger.Info("No unfinished reports to resume")
		return res
	}

	logger.Info("Resuming polling for unfinished reports", zap.Int("count", res.Total))

	maxAge := s.cfg.ResumeMaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	for i := range snaps {
		snap := &snaps[i]

		if age := s.now().Sub(snap.FetchedAt); age > maxAge {
			logger.Warn("Skipping stale report",
				zap.String(logger.FieldReportID, snap.ReportID),
				zap.String("status", string(snap.Status)),
				zap.Duration("age", age.Round(time.Minute)),
			)
			res.Stale++
			continue
		}

		if _, err := s.opener.Open(ctx, snap.ReportID, nil); err != nil {
			logger.Warn("Failed to resume report polling",
				zap.String(logger.FieldReportID, snap.ReportID),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		res.Resumed++
	}

	logger.Info("Report recovery completed",
		zap.Int("total", res.Total),
		zap.Int("resumed", res.Resumed),
		zap.Int("stale", res.Stale),
		zap.Int("failed", res.Failed),
	)
	return res
}
