package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/report/export"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

// Manager owns the open sessions. It keeps at most one session per report
// so the snapshot mirror has a single writer per report id.
type Manager struct {
	backend  Backend
	store    store.Store
	renderer *render.Renderer
	interval time.Duration
	defaults ViewOptions
	exports  export.Service

	mu       sync.Mutex
	sessions map[string]*Session // by session id
	byReport map[string]string   // report id -> session id
}

// NewManager creates a session manager. st may be nil.
func NewManager(backend Backend, st store.Store, r *render.Renderer, interval time.Duration, defaults ViewOptions) *Manager {
	if r == nil {
		r = render.New()
	}
	return &Manager{
		backend:  backend,
		store:    st,
		renderer: r,
		interval: interval,
		defaults: defaults,
		sessions: make(map[string]*Session),
		byReport: make(map[string]string),
	}
}

// SetExportService enables export and preview for sessions opened afterwards
func (m *Manager) SetExportService(svc export.Service) {
	m.mu.Lock()
	m.exports = svc
	m.mu.Unlock()
}

// Defaults returns the view options new sessions start with
func (m *Manager) Defaults() ViewOptions {
	return m.defaults
}

// Open creates a session for reportID and starts polling.
// A nil opts uses the manager defaults.
func (m *Manager) Open(ctx context.Context, reportID string, opts *ViewOptions) (*Session, error) {
	if reportID == "" {
		return nil, errors.ErrValidation("report id is required")
	}

	o := m.defaults
	if opts != nil {
		o = *opts
	}

	m.mu.Lock()
	if existing, ok := m.byReport[reportID]; ok {
		m.mu.Unlock()
		return nil, errors.New(errors.ErrCodeConflict, "report already has an open session").
			WithDetails(map[string]string{"report_id": reportID, "session_id": existing})
	}
	s := newSession(reportID, m.backend, m.store, m.renderer, m.interval, o, m.exports)
	m.sessions[s.ID()] = s
	m.byReport[reportID] = s.ID()
	m.mu.Unlock()

	if err := s.Start(ctx); err != nil {
		m.remove(s)
		return nil, err
	}

	logger.Info("Session opened",
		zap.String(logger.FieldSessionID, s.ID()),
		zap.String(logger.FieldReportID, reportID),
	)
	return s, nil
}

// Get returns an open session
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionMissing, "session not found").
			WithDetails(map[string]string{"session_id": sessionID})
	}
	return s, nil
}

// ForReport returns the open session of a report, if any
func (m *Manager) ForReport(reportID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byReport[reportID]
	if !ok {
		return nil, false
	}
	return m.sessions[id], true
}

// Close stops and forgets a session
func (m *Manager) Close(sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	s.Close()
	m.remove(s)
	return nil
}

// CloseAll closes every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.byReport = make(map[string]string)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()

	if len(all) > 0 {
		logger.Info("All sessions closed", zap.Int("count", len(all)))
	}
}

// List returns all open sessions, oldest first
func (m *Manager) List() []Info {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	infos := make([]Info, len(all))
	for i, s := range all {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].OpenedAt.Equal(infos[j].OpenedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].OpenedAt.Before(infos[j].OpenedAt)
	})
	return infos
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID())
	if m.byReport[s.ReportID()] == s.ID() {
		delete(m.byReport, s.ReportID())
	}
}
