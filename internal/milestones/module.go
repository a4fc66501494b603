// Package milestones provides the grant milestone bounded context module.
package milestones

import (
	"donorops_backend/internal/activity"
	"donorops_backend/internal/config"
	"donorops_backend/internal/events"
	"donorops_backend/internal/grants"
	apphttp "donorops_backend/internal/http"
	"donorops_backend/internal/milestones/handler"
	"donorops_backend/internal/milestones/repository"
	"donorops_backend/internal/milestones/service"
	"donorops_backend/platform/clock"
	"donorops_backend/platform/logger"
	"donorops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the milestone bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the milestone module.
func NewModule(pool *pgxpool.Pool, recorder activity.Recorder, bus events.Bus, clk clock.Clock, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, recorder, bus, clk, log, cfg.LeadUpcomingWindowDays)
	h := handler.New(svc, val, clk, grants.SourcePrefix)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "milestones"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts milestone routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/milestones")
	group.GET("", m.handler.List)
	group.GET("/summary", m.handler.Summary)
	group.GET("/:id", m.handler.Get)
	group.POST("", m.handler.Create)
	group.POST("/auto-close", m.handler.AutoClose)
	group.PATCH("/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
