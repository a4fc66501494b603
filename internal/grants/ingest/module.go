package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "donorops_backend/internal/http"
	"donorops_backend/platform/httpkit"
)

// Module exposes the ingestion pipeline over HTTP, implementing http.Module.
// The scheduler drives the same service on a timer; this endpoint exists for
// operators who want a run now.
type Module struct {
	ingest *Service
}

// NewModule creates the grants module around a configured ingestion service.
func NewModule(ingestSvc *Service) *Module {
	return &Module{ingest: ingestSvc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "grants"
}

// Ingest returns the ingestion service for the scheduler.
func (m *Module) Ingest() *Service {
	return m.ingest
}

// RegisterRoutes mounts ingestion routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/ingest/run", m.runIngest)
}

func (m *Module) runIngest(c *gin.Context) {
	report, err := m.ingest.Run(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "ingestion failed", err.Error())
		return
	}
	httpkit.OK(c, report)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
