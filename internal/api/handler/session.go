package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/pkg/errors"
)

// SessionHandler serves report view sessions
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(m *session.Manager) *SessionHandler {
	return &SessionHandler{manager: m}
}

// OpenSessionRequest is the body of POST /api/v1/sessions
type OpenSessionRequest struct {
	ReportID    string             `json:"report_id" binding:"required"`
	Layout      string             `json:"layout"`
	Structured  *bool              `json:"structured"`
	CaseContext *model.CaseContext `json:"case_context"`
}

// Open handles POST /api/v1/sessions
func (h *SessionHandler) Open(c *gin.Context) {
	var req OpenSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	opts := h.manager.Defaults()
	if req.Layout != "" {
		layout, err := model.ParseLayout(req.Layout)
		if err != nil {
			respondError(c, err)
			return
		}
		opts.Layout = layout
	}
	if req.Structured != nil {
		opts.Structured = *req.Structured
	}
	if req.CaseContext != nil {
		opts.CaseContext = *req.CaseContext
	}

	s, err := h.manager.Open(c.Request.Context(), req.ReportID, &opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.Info())
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	data := h.manager.List()
	c.JSON(http.StatusOK, gin.H{"data": data, "total": len(data)})
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Info())
}

// View handles GET /api/v1/sessions/:id/view
func (h *SessionHandler) View(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Close handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.manager.Close(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectSection handles PUT /api/v1/sessions/:id/selection
func (h *SessionHandler) SelectSection(c *gin.Context) {
	var req struct {
		SectionID string `json:"section_id" binding:"required"`
	}
	h.update(c, &req, func(s *session.Session) error {
		return s.SelectSection(req.SectionID)
	})
}

// SetStructured handles PUT /api/v1/sessions/:id/structured
func (h *SessionHandler) SetStructured(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	h.update(c, &req, func(s *session.Session) error {
		return s.SetStructured(req.Enabled)
	})
}

// SetLayout handles PUT /api/v1/sessions/:id/layout
func (h *SessionHandler) SetLayout(c *gin.Context) {
	var req struct {
		Layout string `json:"layout" binding:"required"`
	}
	h.update(c, &req, func(s *session.Session) error {
		return s.SetLayout(model.Layout(req.Layout))
	})
}

// SetCaseContext handles PUT /api/v1/sessions/:id/case-context
func (h *SessionHandler) SetCaseContext(c *gin.Context) {
	var req model.CaseContext
	h.update(c, &req, func(s *session.Session) error {
		s.SetCaseContext(req)
		return nil
	})
}

// Refetch handles POST /api/v1/sessions/:id/refetch
func (h *SessionHandler) Refetch(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Refetch(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.Info())
}

// RegenerateSection handles POST /api/v1/sessions/:id/sections/:section_id/regenerate
func (h *SessionHandler) RegenerateSection(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RegenerateSection(c.Request.Context(), c.Param("section_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.Info())
}

// Dialogs handles GET /api/v1/sessions/:id/dialogs
func (h *SessionHandler) Dialogs(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Dialogs())
}

// SetDialog handles PUT /api/v1/sessions/:id/dialogs/:kind
func (h *SessionHandler) SetDialog(c *gin.Context) {
	var req struct {
		Open bool `json:"open"`
	}
	s, ok := h.session(c)
	if !ok || !bindJSON(c, &req) {
		return
	}
	if err := s.SetDialog(model.ExportKind(c.Param("kind")), req.Open); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Dialogs())
}

// Payload handles GET /api/v1/sessions/:id/payload
func (h *SessionHandler) Payload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	doc, err := s.Payload()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Export handles POST /api/v1/sessions/:id/export?format=pdf
// Files produced in memory are streamed; otherwise the location is returned.
func (h *SessionHandler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(c.DefaultQuery("format", string(exporter.ExportFormatPDF)))
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := s.Export(c.Request.Context(), format)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(res.Data) > 0 && res.URL == "" {
		c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(res.Filename))
		c.Data(http.StatusOK, res.ContentType, res.Data)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Preview handles POST /api/v1/sessions/:id/preview
// With ?raw=true an inline preview is served as text/html.
func (h *SessionHandler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	preview, err := s.Preview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if queryBool(c, "raw", false) && preview.HTML != "" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(preview.HTML))
		return
	}
	c.JSON(http.StatusOK, preview)
}

// session resolves the :id parameter, answering 404 when unknown
func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	if id == "" {
		respondError(c, errors.ErrValidation("session id is required"))
		return nil, false
	}
	s, err := h.manager.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// update binds req and applies fn to the session, answering with its info
func (h *SessionHandler) update(c *gin.Context, req any, fn func(*session.Session) error) {
	s, ok := h.session(c)
	if !ok || !bindJSON(c, req) {
		return
	}
	if err := fn(s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Info())
}
