package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/backend"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/database"
	"github.com/verustcode/adreport/internal/report/export"
	"github.com/verustcode/adreport/internal/report/recovery"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/logger"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// App holds the wired components shared by the serve and watch commands
type App struct {
	Config    *config.Config
	Store     store.Store
	Backend   *backend.Client
	Manager   *session.Manager
	Telemetry *telemetry.Telemetry

	cleanup *store.EventCleanupService
}

// NewApp opens the snapshot database, installs the report event hook and
// wires the backend client, export service and session manager.
// The logger must be initialized first.
func NewApp(cfg *config.Config) (*App, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = database.DefaultDBPath
	}
	if err := database.InitWithPath(dbPath); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.NewStore(database.Get())

	// entries carrying a report_id are mirrored into report_events
	logger.SetReportEventHook(st.Event())

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.CloseReportEventHook()
		database.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		shutdownTelemetry(tel)
		logger.CloseReportEventHook()
		database.Close()
		return nil, err
	}

	defaults := session.ViewOptions{
		Layout:     cfg.Render.Layout(),
		Structured: cfg.Render.StructuredContent,
	}
	manager := session.NewManager(client, st, render.New(), cfg.Poller.Interval, defaults)
	manager.SetExportService(export.NewService(cfg.Export, client))

	app := &App{
		Config:    cfg,
		Store:     st,
		Backend:   client,
		Manager:   manager,
		Telemetry: tel,
		cleanup:   store.NewEventCleanupService(st.Event(), store.DefaultEventRetention),
	}

	if err := app.cleanup.Start(); err != nil {
		logger.Warn("Failed to start report event cleanup", zap.Error(err))
		app.cleanup = nil
	}
	return app, nil
}

// Resume reopens sessions for reports that were still generating, when enabled
func (a *App) Resume(ctx context.Context) recovery.Result {
	if !a.Config.Poller.ResumeOnStart {
		return recovery.Result{}
	}
	return recovery.NewService(a.Config.Poller, a.Store, a.Manager).Resume(ctx)
}

// Close stops every session and releases the database and telemetry
func (a *App) Close() {
	a.Manager.CloseAll()
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	logger.CloseReportEventHook()
	shutdownTelemetry(a.Telemetry)
	if err := database.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}

func shutdownTelemetry(tel *telemetry.Telemetry) {
	if tel == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown telemetry", zap.Error(err))
	}
}
