// Package router sets up the API routes for the application.
// It is used by the serve command; the CLI render and export commands
// work without it.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/api/handler"
	"github.com/verustcode/adreport/internal/api/middleware"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
)

// Setup configures all API routes
func Setup(r *gin.Engine, m *session.Manager, cfg *config.Config, s store.Store) {
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))
	r.Use(middleware.Metrics())
	r.Use(otelgin.Middleware(consts.ServiceName))

	statusHandler := handler.NewStatusHandler(m, s)
	r.GET("/health", statusHandler.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/status", statusHandler.Status)

	// Sessions poll the backend and render the live report
	sessionHandler := handler.NewSessionHandler(m)
	sessions := v1.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Open)
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.DELETE("/:id", sessionHandler.Close)
		sessions.GET("/:id/view", sessionHandler.View)
		sessions.PUT("/:id/selection", sessionHandler.SelectSection)
		sessions.PUT("/:id/structured", sessionHandler.SetStructured)
		sessions.PUT("/:id/layout", sessionHandler.SetLayout)
		sessions.PUT("/:id/case-context", sessionHandler.SetCaseContext)
		sessions.POST("/:id/refetch", sessionHandler.Refetch)
		sessions.POST("/:id/sections/:section_id/regenerate", sessionHandler.RegenerateSection)

		sessions.GET("/:id/dialogs", sessionHandler.Dialogs)
		sessions.PUT("/:id/dialogs/:kind", sessionHandler.SetDialog)
		sessions.GET("/:id/payload", sessionHandler.Payload)
		sessions.POST("/:id/export", sessionHandler.Export)
		sessions.POST("/:id/preview", sessionHandler.Preview)
	}

	// Snapshots are the mirrored reports, readable without the backend
	snapshotHandler := handler.NewSnapshotHandler(s, render.New(), m.Defaults())
	snapshots := v1.Group("/snapshots")
	{
		snapshots.GET("", snapshotHandler.List)
		snapshots.GET("/:report_id", snapshotHandler.Get)
		snapshots.DELETE("/:report_id", snapshotHandler.Delete)
		snapshots.GET("/:report_id/view", snapshotHandler.View)
		snapshots.GET("/:report_id/events", snapshotHandler.Events)
		snapshots.GET("/:report_id/exports", snapshotHandler.Exports)
	}
}
