package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/database"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
)

// StatusHandler reports server health and runtime information
type StatusHandler struct {
	manager *session.Manager
	store   store.Store
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(m *session.Manager, s store.Store) *StatusHandler {
	return &StatusHandler{manager: m, store: s}
}

// Health handles GET /health
func (h *StatusHandler) Health(c *gin.Context) {
	if err := database.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /api/v1/status
func (h *StatusHandler) Status(c *gin.Context) {
	resp := gin.H{
		"name":       consts.ProjectName,
		"version":    consts.Version,
		"git_commit": consts.GitCommit,
		"started_at": consts.GetStartedAt(),
		"uptime":     consts.GetUptime().String(),
		"sessions":   h.manager.Count(),
		"layouts":    model.AllLayouts(),
	}

	if snapshots, err := h.store.Snapshot().CountAll(); err == nil {
		resp["snapshots"] = snapshots
	}
	c.JSON(http.StatusOK, resp)
}
