// Package leads provides the lead bounded context module.
package leads

import (
	"donorops_backend/internal/activity"
	"donorops_backend/internal/config"
	"donorops_backend/internal/events"
	apphttp "donorops_backend/internal/http"
	"donorops_backend/internal/leads/handler"
	"donorops_backend/internal/leads/repository"
	"donorops_backend/internal/leads/scoring"
	"donorops_backend/internal/leads/service"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"
	"donorops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the lead module.
func NewModule(pool *pgxpool.Pool, weights scoring.Weights, recorder activity.Recorder, bus events.Bus, clk clock.Clock, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	scorer := scoring.New(weights)
	svc := service.New(repo, scorer, recorder, bus, clk, log, cfg.LeadAlertWindowDays, cfg.LeadUpcomingWindowDays)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")
	group.GET("", m.handler.List)
	group.GET("/follow-ups/due", m.handler.DueForFollowUp)
	group.GET("/follow-ups/upcoming", m.handler.UpcomingFollowUps)
	group.GET("/:id", m.handler.Get)
	group.POST("", m.handler.Create)
	group.PATCH("/:id", m.handler.Update)
	group.PATCH("/:id/status", m.handler.UpdateStatus)
	group.POST("/:id/follow-up/complete", m.handler.CompleteFollowUp)
	group.DELETE("/:id", m.handler.Archive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
