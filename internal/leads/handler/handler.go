package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"donorops_backend/internal/leads/domain"
	"donorops_backend/internal/leads/repository"
	"donorops_backend/internal/leads/service"
	"donorops_backend/internal/leads/transport"
	"donorops_backend/platform/httpkit"
	"donorops_backend/platform/validator"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead id"
)

// New creates a new lead handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return id, true
}

// List retrieves leads ordered by priority.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	list, err := h.svc.List(c.Request.Context(), repository.ListParams{
		Status: domain.Status(req.Status),
		Source: req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}

// Get retrieves a lead by id.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Create adds a new lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), service.CreateParams{
		ContactName:       req.ContactName,
		Organization:      req.Organization,
		Email:             req.Email,
		Phone:             req.Phone,
		Source:            req.Source,
		EquipmentType:     req.EquipmentType,
		EstimatedQuantity: req.EstimatedQuantity,
		Timeline:          req.Timeline,
		Notes:             req.Notes,
		FollowUpDate:      req.FollowUpDate,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

// Update applies a partial edit to a lead.
// PATCH /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, service.UpdateParams{
		ContactName:       req.ContactName,
		Organization:      req.Organization,
		Email:             req.Email,
		Phone:             req.Phone,
		Source:            req.Source,
		EquipmentType:     req.EquipmentType,
		EstimatedQuantity: req.EstimatedQuantity,
		Timeline:          req.Timeline,
		Notes:             req.Notes,
		Priority:          req.Priority,
		FollowUpDate:      req.FollowUpDate,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// UpdateStatus moves a lead to a new pipeline status.
// PATCH /api/v1/leads/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// CompleteFollowUp marks the current follow-up done.
// POST /api/v1/leads/:id/follow-up/complete
func (h *Handler) CompleteFollowUp(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.CompleteFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.CompleteFollowUp(c.Request.Context(), id, req.NextDate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Archive removes a lead from the active collection.
// DELETE /api/v1/leads/:id
func (h *Handler) Archive(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Archive(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// DueForFollowUp lists leads inside the alert window, overdue included.
// GET /api/v1/leads/follow-ups/due
func (h *Handler) DueForFollowUp(c *gin.Context) {
	list, err := h.svc.DueForFollowUp(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}

// UpcomingFollowUps lists leads inside the dashboard's upcoming window.
// GET /api/v1/leads/follow-ups/upcoming
func (h *Handler) UpcomingFollowUps(c *gin.Context) {
	list, err := h.svc.UpcomingFollowUps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}
