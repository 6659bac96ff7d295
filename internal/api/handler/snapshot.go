package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/errors"
)

// Event pagination limits
const (
	defaultEventLimit = 50
	maxEventLimit     = 500
	defaultExportList = 20
)

// SnapshotHandler serves the mirrored reports and their event and export history
type SnapshotHandler struct {
	store    store.Store
	renderer *render.Renderer
	defaults session.ViewOptions
}

// NewSnapshotHandler creates a new snapshot handler.
// defaults are the view options used when the request does not override them.
func NewSnapshotHandler(s store.Store, r *render.Renderer, defaults session.ViewOptions) *SnapshotHandler {
	if r == nil {
		r = render.New()
	}
	return &SnapshotHandler{store: s, renderer: r, defaults: defaults}
}

// List handles GET /api/v1/snapshots
func (h *SnapshotHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	status := model.ReportStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		respondError(c, errors.ErrValidation("invalid status: "+string(status)))
		return
	}

	snaps, total, err := h.store.Snapshot().List(status, page, pageSize)
	if err != nil {
		respondDBError(c, "snapshot", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      snaps,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get handles GET /api/v1/snapshots/:report_id
func (h *SnapshotHandler) Get(c *gin.Context) {
	reportID := c.Param("report_id")

	snap, err := h.store.Snapshot().GetByReportID(reportID)
	if err != nil {
		respondDBError(c, "snapshot", err)
		return
	}
	report, err := snap.Report()
	if err != nil {
		respondError(c, errors.ErrInternal("stored snapshot is unreadable", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot": snap,
		"report":   report,
	})
}

// View handles GET /api/v1/snapshots/:report_id/view?layout=&structured=
// The mirrored report is rendered without contacting the backend.
func (h *SnapshotHandler) View(c *gin.Context) {
	reportID := c.Param("report_id")

	opts := h.defaults
	if l := c.Query("layout"); l != "" {
		layout, err := model.ParseLayout(l)
		if err != nil {
			respondError(c, err)
			return
		}
		opts.Layout = layout
	}
	opts.Structured = queryBool(c, "structured", opts.Structured)

	report, err := h.store.Snapshot().LoadReport(reportID)
	if err != nil {
		respondDBError(c, "snapshot", err)
		return
	}

	v := session.BuildView(h.renderer, report, opts)
	v.ReportID = reportID
	c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /api/v1/snapshots/:report_id
func (h *SnapshotHandler) Delete(c *gin.Context) {
	reportID := c.Param("report_id")

	err := h.store.Transaction(func(tx store.Store) error {
		if err := tx.Snapshot().Delete(reportID); err != nil {
			return err
		}
		return tx.Event().DeleteByReportID(reportID)
	})
	if err != nil {
		respondDBError(c, "snapshot", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Events handles GET /api/v1/snapshots/:report_id/events?level=&limit=&offset=
func (h *SnapshotHandler) Events(c *gin.Context) {
	reportID := c.Param("report_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultEventLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > maxEventLimit {
		limit = defaultEventLimit
	}
	if offset < 0 {
		offset = 0
	}

	level := model.LogLevel(c.Query("level"))
	switch level {
	case "", model.LogLevelDebug, model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal:
	default:
		respondError(c, errors.ErrValidation("invalid log level, must be one of: debug, info, warn, error, fatal"))
		return
	}

	events, total, err := h.store.Event().List(model.ReportEventQuery{
		ReportID: reportID,
		Level:    level,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondDBError(c, "events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      events,
		"total":     total,
		"report_id": reportID,
	})
}

// Exports handles GET /api/v1/snapshots/:report_id/exports
func (h *SnapshotHandler) Exports(c *gin.Context) {
	reportID := c.Param("report_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultExportList)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultExportList
	}

	records, err := h.store.Export().ListByReportID(reportID, limit)
	if err != nil {
		respondDBError(c, "exports", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}
