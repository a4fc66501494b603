package activity

import (
	"github.com/gin-gonic/gin"

	apphttp "donorops_backend/internal/http"
	"donorops_backend/platform/httpkit"
)

// Module exposes the activity feed over HTTP, implementing http.Module.
type Module struct {
	service *Service
}

// NewModule creates the activity module.
func NewModule(svc *Service) *Module {
	return &Module{service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activity"
}

// Service returns the recorder other modules append through.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the feed route on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/activity", m.list)
}

func (m *Module) list(c *gin.Context) {
	entries, err := m.service.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, entries)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
