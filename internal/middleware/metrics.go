package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/internal/metrics"
)

// Metrics observes request latency by method, matched route and status.
//
// Behavior:
//   - Unmatched routes are labelled "unmatched" instead of their raw path.
//   - Latency is recorded after all downstream handlers return.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Timeout bounds the request context to d.
//
// Parameters:
//   - d (time.Duration): deadline for everything downstream; the prediction
//     service falls back when the fetch chain runs out of time.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
