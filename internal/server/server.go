// Package server provides the HTTP server for the application.
// It handles server lifecycle, API routes, and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/api/router"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout = 30 * time.Second
	// exports render PDFs synchronously
	defaultWriteTimeout    = 2 * time.Minute
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultStopTimeout     = 5 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	manager    *session.Manager
	router     *gin.Engine
	store      store.Store
}

// New creates a new server instance
func New(cfg *config.Config, m *session.Manager, s store.Store) *Server {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	return &Server{
		cfg:     cfg,
		manager: m,
		router:  r,
		store:   s,
	}
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes() {
	router.Setup(s.router, s.manager, s.cfg, s.store)
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", s.cfg.Server.Address()),
		zap.Bool("debug", s.cfg.Server.Debug),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown waits for a shutdown signal and stops the server gracefully.
// A second signal forces an immediate exit.
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
		zap.String("signal", sig.String()))

	go func() {
		sig := <-quit
		logger.Warn("Received second shutdown signal, forcing exit",
			zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// sessions stop polling only after no request can reach them
	s.manager.CloseAll()
	logger.Info("Server stopped")
}

// Stop stops the server immediately
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
