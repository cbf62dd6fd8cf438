package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/stockcast/internal/middleware"
)

// defaultRequestTimeout bounds /api/v1 requests when no timeout is configured.
const defaultRequestTimeout = 30 * time.Second

// NewRouter creates a Gin engine with routes configured.
//
// Parameters:
//   - handler (*Handler): prediction and model-listing handlers.
//   - requestTimeout (time.Duration): deadline applied to every /api/v1 request;
//     zero or negative uses defaultRequestTimeout. It should cover the fetch budget
//     (config.FetchConfig.Budget) so retries are not cut short.
//
// Behavior:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, Metrics).
//   - Rate-limits and bounds the API v1 group.
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics).
//   - Configures API v1 routes (/api/v1).
//
// Returns:
//   - *gin.Engine: the router. Health and readiness endpoints (/healthz, /readyz)
//     are registered by the app package.
func NewRouter(handler *Handler, requestTimeout time.Duration) *gin.Engine {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.Metrics(),
	)

	// ─── Swagger & metrics ────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1", middleware.RateLimiter(), middleware.Timeout(requestTimeout))
	{
		v1.POST("/predict", handler.PostPredict)
		v1.GET("/predict/:ticker", handler.GetPredict)
		v1.GET("/models", handler.ListModels)
	}

	return router
}
