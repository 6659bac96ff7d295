package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

func init() {
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

// mockOpener records opened report ids
type mockOpener struct {
	opened []string
	fail   map[string]bool
}

func (m *mockOpener) Open(ctx context.Context, reportID string, opts *session.ViewOptions) (*session.Session, error) {
	if m.fail[reportID] {
		return nil, errors.New(errors.ErrCodeConflict, "already open")
	}
	m.opened = append(m.opened, reportID)
	return nil, nil
}

func TestResume_NoReports(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	opener := &mockOpener{}
	res := NewService(config.PollerConfig{}, s, opener).Resume(context.Background())

	assert.Equal(t, Result{}, res)
	assert.Empty(t, opener.opened)
}

func TestResume_OpensUnfinishedReports(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	_, err := s.Snapshot().Upsert(store.NewTestReport("generating"), now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.Snapshot().Upsert(store.NewTestReport("completed", func(r *model.Report) {
		r.Status = model.ReportStatusCompleted
	}), now)
	require.NoError(t, err)

	opener := &mockOpener{}
	res := NewService(config.PollerConfig{ResumeMaxAge: time.Hour}, s, opener).Resume(context.Background())

	assert.Equal(t, []string{"generating"}, opener.opened)
	assert.Equal(t, Result{Total: 1, Resumed: 1}, res)
}

func TestResume_SkipsStaleAndCountsFailures(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	_, err := s.Snapshot().Upsert(store.NewTestReport("stale"), now.Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = s.Snapshot().Upsert(store.NewTestReport("busy", func(r *model.Report) {
		r.Status = model.ReportStatusQueued
	}), now)
	require.NoError(t, err)

	opener := &mockOpener{fail: map[string]bool{"busy": true}}
	svc := NewService(config.PollerConfig{}, s, opener)
	svc.now = func() time.Time { return now }

	res := svc.Resume(context.Background())
	assert.Empty(t, opener.opened)
	assert.Equal(t, Result{Total: 2, Stale: 1, Failed: 1}, res)
}
