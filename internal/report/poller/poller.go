// Package poller drives the report generation lifecycle: it fetches the
// report at a fixed interval until the backend reports a terminal status.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/sections"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// Fetcher loads the current report record from the backend
type Fetcher interface {
	Fetch(ctx context.Context, reportID string) (*model.Report, error)
}

// Hooks are called after state changes, outside the poller lock.
// They run on the poll goroutine and must not call Stop synchronously.
type Hooks struct {
	// OnUpdate receives every accepted report
	OnUpdate func(report *model.Report)
	// OnError receives the error that halted polling
	OnError func(err error)
	// Selected returns the currently selected section id
	Selected func() string
	// SelectDefault is called with the first ordered section id when the
	// report becomes renderable while nothing is selected
	SelectDefault func(sectionID string)
}

// HaltReason tells why polling is not active
type HaltReason string

const (
	HaltNone     HaltReason = ""
	HaltTerminal HaltReason = "terminal"
	HaltError    HaltReason = "error"
	HaltStopped  HaltReason = "stopped"
)

// State is a snapshot of the poller
type State struct {
	ReportID    string        `json:"report_id"`
	Report      *model.Report `json:"report,omitempty"`
	Active      bool          `json:"active"`
	Halt        HaltReason    `json:"halt_reason,omitempty"`
	Err         error         `json:"-"`
	Polls       int           `json:"polls"`
	LastFetched time.Time     `json:"last_fetched,omitempty"`
}

// Status returns the status of the held report, empty before the first fetch
func (s State) Status() model.ReportStatus {
	if s.Report == nil {
		return ""
	}
	return s.Report.Status
}

// Poller polls one report. The zero value is not usable; use New.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	hooks    Hooks
	log      *zap.Logger

	mu       sync.Mutex
	state    State
	floor    model.ReportStatus // highest accepted status since the last reset
	cron     *cron.Cron
	halted   context.Context // done once the last scheduler's jobs finished
	loopCtx  context.Context
	cancel   context.CancelFunc
	gen      uint64
	inflight context.CancelFunc
	applying int        // results past the generation check, hooks included
	idle     *sync.Cond // signalled when applying drops to zero
}

// New creates a poller. A non-positive interval uses the default.
func New(fetcher Fetcher, interval time.Duration, hooks Hooks) *Poller {
	if interval <= 0 {
		interval = consts.DefaultPollInterval
	}
	p := &Poller{
		fetcher:  fetcher,
		interval: interval,
		hooks:    hooks,
		log:      logger.Named("poller"),
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Start begins polling reportID: one fetch right away, then every interval.
// It fails when the poller is already active.
func (p *Poller) Start(ctx context.Context, reportID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Active {
		return errors.New(errors.ErrCodePollActive, "poller already active").
			WithDetails(map[string]string{"report_id": p.state.ReportID})
	}
	if reportID == "" {
		return errors.ErrValidation("report id is required")
	}

	if p.state.ReportID != reportID {
		p.state = State{ReportID: reportID}
		p.floor = ""
	}
	p.state.Active = true
	p.state.Halt = HaltNone
	p.state.Err = nil
	p.log = logger.WithReport(reportID).Named("poller")

	p.loopCtx, p.cancel = context.WithCancel(context.WithoutCancel(ctx))

	cl := cronLogger{sugar: p.log.Sugar()}
	p.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	p.cron.Schedule(newFixedInterval(p.interval), cron.FuncJob(p.tick))
	p.cron.Start()

	telemetry.GetMetrics().RecordPollerStarted(p.loopCtx)
	p.log.Info("Polling started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels polling and waits for a running tick, including its hooks,
// to finish. A fetch still in flight, such as a Refetch after a terminal
// halt, is superseded. After Stop returns no fetch mutates state.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.haltLocked(HaltStopped)
	if p.state.ReportID != "" {
		p.state.Halt = HaltStopped
	}
	p.gen++
	if p.inflight != nil {
		p.inflight()
		p.inflight = nil
	}
	for p.applying > 0 {
		p.idle.Wait()
	}
	done := p.halted
	p.mu.Unlock()

	if done != nil {
		<-done.Done()
	}
}

// Restart resets the status lifecycle and starts polling again.
// It is meant for explicit user actions such as regenerating a section,
// after which the backend legitimately moves back to a non-terminal status.
func (p *Poller) Restart(ctx context.Context) error {
	p.Stop()

	p.mu.Lock()
	reportID := p.state.ReportID
	p.floor = ""
	p.mu.Unlock()

	return p.Start(ctx, reportID)
}

// Refetch is the user-initiated fetch. While active it fetches right away
// and supersedes any fetch in flight. After an error halt it resumes
// polling. After a terminal halt it fetches once without resuming.
func (p *Poller) Refetch(ctx context.Context) error {
	p.mu.Lock()
	active, halt, reportID := p.state.Active, p.state.Halt, p.state.ReportID
	p.mu.Unlock()

	if reportID == "" {
		return errors.ErrValidation("poller has no report")
	}
	if !active && halt != HaltTerminal {
		return p.Start(ctx, reportID)
	}

	p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Err
}

// State returns a snapshot of the current state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// tick is the scheduled job
func (p *Poller) tick() {
	p.mu.Lock()
	ctx := p.loopCtx
	p.mu.Unlock()
	if ctx == nil {
		return
	}
	p.fetch(ctx)
}

// fetch issues one fetch under a new generation and applies its result
// only if no newer fetch was issued meanwhile.
func (p *Poller) fetch(parent context.Context) {
	p.mu.Lock()
	if p.state.ReportID == "" {
		p.mu.Unlock()
		return
	}
	p.gen++
	gen := p.gen
	if p.inflight != nil {
		p.inflight()
	}
	ctx, cancel := context.WithCancel(parent)
	p.inflight = cancel
	reportID := p.state.ReportID
	p.mu.Unlock()

	report, err := p.fetcher.Fetch(ctx, reportID)
	p.apply(gen, cancel, report, err)
}

func (p *Poller) apply(gen uint64, cancel context.CancelFunc, report *model.Report, err error) {
	defer cancel()

	metrics := telemetry.GetMetrics()
	ctx := context.Background()

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.log.Debug("Dropping superseded fetch result")
		return
	}
	p.inflight = nil
	if p.state.Halt == HaltStopped {
		p.mu.Unlock()
		return
	}
	p.applying++
	defer p.doneApplying()

	if err != nil {
		appErr := errors.Wrap(errors.ErrCodePollFetch, "failed to fetch report status", err)
		p.state.Err = appErr
		p.haltLocked(HaltError)
		p.mu.Unlock()

		metrics.RecordPoll(ctx, "", false)
		p.log.Error("Polling stopped after fetch error", zap.Error(err))
		if p.hooks.OnError != nil {
			p.hooks.OnError(appErr)
		}
		return
	}

	if report == nil || !p.floor.Accepts(report.Status) {
		fetched := model.ReportStatus("")
		if report != nil {
			fetched = report.Status
		}
		current := p.floor
		p.state.Polls++
		p.mu.Unlock()

		metrics.RecordStatusRegression(ctx, string(current), string(fetched))
		p.log.Warn("Ignoring fetched report with regressed or unknown status",
			zap.String("current", string(current)),
			zap.String("fetched", string(fetched)),
		)
		return
	}

	previous := p.floor
	p.state.Report = report
	p.state.Polls++
	p.state.LastFetched = time.Now()
	p.state.Err = nil
	p.floor = report.Status
	if report.Status.IsTerminal() {
		p.haltLocked(HaltTerminal)
	}
	p.mu.Unlock()

	metrics.RecordPoll(ctx, string(report.Status), true)
	if previous != report.Status {
		metrics.RecordStatusTransition(ctx, string(previous), string(report.Status))
		p.log.Info("Report status changed",
			zap.String("from", string(previous)),
			zap.String("to", string(report.Status)),
		)
	}

	if p.hooks.OnUpdate != nil {
		p.hooks.OnUpdate(report)
	}
	if report.Status.HasContent() {
		p.selectDefault(report)
	}
}

func (p *Poller) doneApplying() {
	p.mu.Lock()
	p.applying--
	if p.applying == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}

func (p *Poller) selectDefault(report *model.Report) {
	if p.hooks.SelectDefault == nil {
		return
	}
	if p.hooks.Selected != nil && p.hooks.Selected() != "" {
		return
	}
	if first := sections.First(report); first != "" {
		p.hooks.SelectDefault(first)
	}
}

// haltLocked stops the scheduler without waiting for the running job, so it
// is safe to call from inside a tick.
func (p *Poller) haltLocked(reason HaltReason) {
	if !p.state.Active {
		return
	}

	p.state.Active = false
	p.state.Halt = reason
	if p.cancel != nil {
		p.cancel()
	}
	if p.inflight != nil {
		p.inflight()
		p.inflight = nil
	}

	if p.cron != nil {
		p.halted = p.cron.Stop()
		p.cron = nil
	}

	telemetry.GetMetrics().RecordPollerStopped(context.Background(), string(reason))
	p.log.Info("Polling halted", zap.String("reason", string(reason)))
}
