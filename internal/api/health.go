package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: liveness probe (always 200) with the number of cached models.
//   - /readyz: readiness probe; 503 when the price archive is configured and unreachable.
type HealthHandler struct {
	ping   func(ctx context.Context) error // nil when the archive is disabled
	loaded func() int
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - ping (func(ctx) error): archive connectivity check; nil when Postgres is disabled (always ready).
//   - loaded (func() int): number of cached models reported as models_loaded; may be nil.
func NewHealthHandler(ping func(ctx context.Context) error, loaded func() int) *HealthHandler {
	return &HealthHandler{ping: ping, loaded: loaded}
}

func (h *HealthHandler) modelsLoaded() int {
	if h.loaded == nil {
		return 0
	}
	return h.loaded()
}

// Register mounts the health and readiness endpoints on r.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]interface{}
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "models_loaded": h.modelsLoaded()})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if the price archive (when enabled) is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]interface{}
	// @Failure      503  {object}  map[string]interface{}
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.ping != nil {
			if err := h.ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "models_loaded": h.modelsLoaded(), "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "models_loaded": h.modelsLoaded()})
	})
}
