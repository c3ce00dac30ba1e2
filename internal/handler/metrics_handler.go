package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/service"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

const readinessTimeout = 2 * time.Second

// Pinger checks a dependency for readiness.
type Pinger func(ctx context.Context) error

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	checks  map[string]Pinger
}

// NewMetricsHandler constructs a metrics handler. checks are run by Ready.
func NewMetricsHandler(metrics *service.MetricsService, checks map[string]Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, checks: checks}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness probe
// @Tags Ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary Readiness probe
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		err := appErrors.WithFields(appErrors.ErrNetwork, failed)
		err.Message = "dependencies unavailable"
		err.Status = http.StatusServiceUnavailable
		response.Error(c, err)
		return
	}
	response.OK(c, h.metrics.Snapshot())
}
