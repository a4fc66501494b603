package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"donorops_backend/internal/milestones/domain"
	"donorops_backend/internal/milestones/repository"
	"donorops_backend/internal/milestones/service"
	"donorops_backend/internal/milestones/transport"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/httpkit"
	"donorops_backend/platform/validator"
)

// Handler handles HTTP requests for grant milestones.
type Handler struct {
	svc        *service.Service
	val        *validator.Validator
	clk        clock.Clock
	feedPrefix string
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid milestone id"
)

// New creates a new milestone handler. feedPrefix scopes the auto-close
// sweep to feed-sourced milestone ids.
func New(svc *service.Service, val *validator.Validator, clk clock.Clock, feedPrefix string) *Handler {
	return &Handler{svc: svc, val: val, clk: clk, feedPrefix: feedPrefix}
}

// List retrieves milestones with optional status and due-date filters.
// GET /api/v1/milestones
func (h *Handler) List(c *gin.Context) {
	var req transport.ListMilestonesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	list, err := h.svc.List(c.Request.Context(), repository.ListParams{
		Status:  domain.Status(req.Status),
		DueFrom: req.DueFrom,
		DueTo:   req.DueTo,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToViews(list, h.clk.Now()))
}

// Get retrieves a milestone by its id.
// GET /api/v1/milestones/:id
func (h *Handler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	m, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToView(m, h.clk.Now()))
}

// Create adds a manually tracked milestone.
// POST /api/v1/milestones
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	m, err := h.svc.CreateManual(c.Request.Context(), service.CreateManualParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		URL:         req.URL,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToView(m, h.clk.Now()))
}

// UpdateStatus transitions a milestone to a new stored status.
// PATCH /api/v1/milestones/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateMilestoneStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	m, err := h.svc.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToView(m, h.clk.Now()))
}

// AutoClose sweeps feed-sourced milestones past their due date.
// POST /api/v1/milestones/auto-close
func (h *Handler) AutoClose(c *gin.Context) {
	closed, err := h.svc.AutoClose(c.Request.Context(), h.feedPrefix)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"closed": closed})
}

// Summary returns dashboard counts per display status.
// GET /api/v1/milestones/summary
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.svc.Summarize(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}
