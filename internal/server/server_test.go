package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/database"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
)

type queuedBackend struct{}

func (queuedBackend) Fetch(_ context.Context, reportID string) (*model.Report, error) {
	return &model.Report{ID: reportID, Status: model.ReportStatusQueued, Content: model.NewReportContent()}, nil
}

func (queuedBackend) RegenerateSection(context.Context, string, string) error { return nil }

func newTestServer(t *testing.T, cfg *config.Config) (*Server, func()) {
	t.Helper()
	testStore, cleanup := store.SetupTestDB(t)
	m := session.NewManager(queuedBackend{}, testStore, render.New(), time.Hour, session.ViewOptions{Layout: model.LayoutCompact})
	srv := New(cfg, m, testStore)
	return srv, func() {
		m.CloseAll()
		cleanup()
	}
}

// TestServer_New tests creating a new server
func TestServer_New(t *testing.T) {
	cfg := config.Default()
	srv, cleanup := newTestServer(t, cfg)
	defer cleanup()

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Router())
	assert.Nil(t, srv.httpServer)
}

// TestServer_DebugMode tests debug mode configuration
func TestServer_DebugMode(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		expected string
	}{
		{name: "debug mode enabled", debug: true, expected: gin.DebugMode},
		{name: "debug mode disabled", debug: false, expected: gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Server.Debug = tt.debug
			_, cleanup := newTestServer(t, cfg)
			defer cleanup()

			assert.Equal(t, tt.expected, gin.Mode())
		})
	}
}

// TestServer_SetupRoutes tests that the API routes are mounted
func TestServer_SetupRoutes(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()
	srv.SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestServer_RouterConfiguration tests router configuration
func TestServer_RouterConfiguration(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()

	assert.False(t, srv.router.RedirectTrailingSlash)
	assert.False(t, srv.router.RedirectFixedPath)
}

// TestServer_HTTPTimeouts tests HTTP server timeout configuration
func TestServer_HTTPTimeouts(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	srv, cleanup := newTestServer(t, cfg)
	defer cleanup()
	srv.SetupRoutes()

	require.NoError(t, srv.Start())
	defer srv.Stop()

	assert.Equal(t, defaultReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.httpServer.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.httpServer.IdleTimeout)
}

// TestServer_StopWithoutStart tests stopping a server that never started
func TestServer_StopWithoutStart(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()

	assert.NoError(t, srv.Stop())
}

// TestNewApp tests wiring the application components
func TestNewApp(t *testing.T) {
	database.ResetForTesting()
	defer database.ResetForTesting()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "adreport.db")
	cfg.Poller.ResumeOnStart = false

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Backend)
	assert.NotNil(t, app.Manager)
	assert.Equal(t, 0, app.Manager.Count())
	assert.NoError(t, database.HealthCheck())

	res := app.Resume(context.Background())
	assert.Zero(t, res.Total)
}

// TestNewApp_InvalidBackend tests that a bad backend URL fails wiring
func TestNewApp_InvalidBackend(t *testing.T) {
	database.ResetForTesting()
	defer database.ResetForTesting()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "adreport.db")
	cfg.Backend.BaseURL = ""

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
