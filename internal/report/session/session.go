// Package session holds the per-view context of a report screen: which
// report is polled, which section is selected and how it is displayed.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/export"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/internal/report/poller"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/sections"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/idgen"
	"github.com/verustcode/adreport/pkg/logger"
)

// Backend is what a session needs from the generation backend
type Backend interface {
	poller.Fetcher
	RegenerateSection(ctx context.Context, reportID, sectionID string) error
}

// Session is the state of one report view. All methods are safe for
// concurrent use.
type Session struct {
	id       string
	reportID string
	backend  Backend
	store    store.Store
	renderer *render.Renderer
	poller   *poller.Poller
	exports  *export.Coordinator
	log      *zap.Logger

	mu         sync.RWMutex
	opts       ViewOptions
	selected   string
	closed     bool
	openedAt   time.Time
	lastStored time.Time
}

// Info summarizes a session for listings
type Info struct {
	ID         string             `json:"id"`
	ReportID   string             `json:"report_id"`
	Status     model.ReportStatus `json:"status"`
	Polling    bool               `json:"polling"`
	Layout     model.Layout       `json:"layout"`
	Structured bool               `json:"structured"`
	Selected   string             `json:"selected_section,omitempty"`
	OpenedAt   time.Time          `json:"opened_at"`
	MirroredAt time.Time          `json:"mirrored_at"`
	Error      string             `json:"error,omitempty"`
}

// newSession creates a session; polling starts with Start.
// st may be nil, in which case fetched reports are not mirrored.
// A nil export service disables export and preview.
func newSession(reportID string, backend Backend, st store.Store, r *render.Renderer, interval time.Duration, opts ViewOptions, svc export.Service) *Session {
	if !opts.Layout.IsValid() {
		opts.Layout = model.DefaultLayout
	}
	s := &Session{
		id:       idgen.NewSessionID(),
		reportID: reportID,
		backend:  backend,
		store:    st,
		renderer: r,
		opts:     opts,
		openedAt: time.Now(),
	}
	s.log = logger.WithSession(s.id, reportID)
	s.poller = poller.New(backend, interval, poller.Hooks{
		OnUpdate:      s.onUpdate,
		OnError:       s.onError,
		Selected:      s.Selected,
		SelectDefault: s.selectDefault,
	})
	if svc != nil {
		var records store.ExportRecordStore
		if st != nil {
			records = st.Export()
		}
		s.exports = export.NewCoordinator(svc, records, r)
	}
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// ReportID returns the polled report id
func (s *Session) ReportID() string { return s.reportID }

// Start begins polling the report
func (s *Session) Start(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.poller.Start(ctx, s.reportID)
}

// Close stops polling and waits for an in-flight fetch to finish.
// Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// the poller hooks take s.mu, so Stop must run unlocked
	s.poller.Stop()
	s.log.Info("Session closed")
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// View renders the current report with the session's display options
func (s *Session) View() *View {
	state := s.poller.State()

	s.mu.RLock()
	opts, selected := s.opts, s.selected
	s.mu.RUnlock()

	v := BuildView(s.renderer, state.Report, opts)
	v.ReportID = s.reportID
	v.Selected = selected
	return v
}

// Info returns a summary of the session
func (s *Session) Info() Info {
	state := s.poller.State()

	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		ID:         s.id,
		ReportID:   s.reportID,
		Status:     state.Status(),
		Polling:    state.Active,
		Layout:     s.opts.Layout,
		Structured: s.opts.Structured,
		Selected:   s.selected,
		OpenedAt:   s.openedAt,
		MirroredAt: s.lastStored,
	}
	if state.Err != nil {
		info.Error = state.Err.Error()
	}
	return info
}

// PollState returns the poller snapshot
func (s *Session) PollState() poller.State {
	return s.poller.State()
}

// Report returns the latest accepted report, nil before the first fetch
func (s *Session) Report() *model.Report {
	return s.poller.State().Report
}

// Options returns the display options
func (s *Session) Options() ViewOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Selected returns the selected section id
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectSection selects a section. Once the report is loaded the id must
// be one of its displayed sections.
func (s *Session) SelectSection(sectionID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if report := s.Report(); report != nil && !contains(sections.Order(report.Content.Keys()), sectionID) {
		return errors.New(errors.ErrCodeNotFound, "section not found: "+sectionID).
			WithDetails(map[string]string{"section_id": sectionID})
	}

	s.mu.Lock()
	s.selected = sectionID
	s.mu.Unlock()
	return nil
}

// SetStructured toggles the structured record display. The markdown view
// does not change.
func (s *Session) SetStructured(on bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.mu.Lock()
	s.opts.Structured = on
	s.mu.Unlock()
	return nil
}

// SetLayout switches the layout for every section
func (s *Session) SetLayout(layout model.Layout) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !layout.IsValid() {
		_, err := model.ParseLayout(string(layout))
		return err
	}
	s.mu.Lock()
	s.opts.Layout = layout
	s.mu.Unlock()
	return nil
}

// SetCaseContext replaces the case context used for placeholders
func (s *Session) SetCaseContext(cc model.CaseContext) {
	s.mu.Lock()
	s.opts.CaseContext = cc
	s.mu.Unlock()
}

// Refetch is the user-initiated re-fetch; it resumes polling after an error
func (s *Session) Refetch(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.poller.Refetch(ctx)
}

// RegenerateSection asks the backend to regenerate one section and polls
// again until the report is terminal.
func (s *Session) RegenerateSection(ctx context.Context, sectionID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if sectionID == "" {
		return errors.ErrValidation("section id is required")
	}
	if err := s.backend.RegenerateSection(ctx, s.reportID, sectionID); err != nil {
		return err
	}

	s.log.Info("Section regeneration requested, restarting polling", zap.String(logger.FieldSectionID, sectionID))
	return s.poller.Restart(ctx)
}

// Dialogs returns the preview and download dialog state
func (s *Session) Dialogs() export.DialogState {
	if s.exports == nil {
		return export.DialogState{}
	}
	return s.exports.Dialogs()
}

// SetDialog opens or closes the preview or download dialog
func (s *Session) SetDialog(kind model.ExportKind, open bool) error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	switch {
	case kind == model.ExportKindPreview && open:
		c.OpenPreview()
	case kind == model.ExportKindPreview:
		c.ClosePreview()
	case kind == model.ExportKindExport && open:
		c.OpenDownload()
	case kind == model.ExportKindExport:
		c.CloseDownload()
	default:
		return errors.ErrValidation("unknown dialog: " + string(kind))
	}
	return nil
}

// Export requests an export file of the current report in the session layout
func (s *Session) Export(ctx context.Context, format exporter.ExportFormat) (*export.Result, error) {
	c, err := s.coordinator()
	if err != nil {
		return nil, err
	}
	return c.RequestExport(ctx, s.exportRequest(), format)
}

// Preview requests a preview of the current report in the session layout
func (s *Session) Preview(ctx context.Context) (*export.Preview, error) {
	c, err := s.coordinator()
	if err != nil {
		return nil, err
	}
	return c.RequestPreview(ctx, s.exportRequest())
}

// Payload returns the export payload of the current report
func (s *Session) Payload() (*model.ExportPayload, error) {
	c, err := s.coordinator()
	if err != nil {
		return nil, err
	}
	return c.Payload(s.exportRequest())
}

func (s *Session) exportRequest() export.Request {
	report := s.Report()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return export.Request{
		Report:      report,
		Layout:      s.opts.Layout,
		CaseContext: s.opts.CaseContext,
	}
}

func (s *Session) coordinator() (*export.Coordinator, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.exports == nil {
		return nil, errors.New(errors.ErrCodeExportFailed, "export is not configured")
	}
	return s.exports, nil
}

func (s *Session) checkOpen() error {
	if s.Closed() {
		return errors.New(errors.ErrCodeSessionClosed, "session is closed").
			WithDetails(map[string]string{"session_id": s.id})
	}
	return nil
}

func (s *Session) onUpdate(report *model.Report) {
	if s.store == nil {
		return
	}
	now := time.Now()
	if _, err := s.store.Snapshot().Upsert(report, now); err != nil {
		s.log.Warn("Failed to mirror report snapshot", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.lastStored = now
	s.mu.Unlock()
}

func (s *Session) onError(err error) {
	s.log.Error("Polling stopped", zap.Error(err))
}

func (s *Session) selectDefault(sectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		s.selected = sectionID
		s.log.Debug("Default section selected", zap.String(logger.FieldSectionID, sectionID))
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
