package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/internal/domain/dto"
	"github.com/guttosm/stockcast/internal/logger"
)

// RecoveryMiddleware returns a Gin middleware that recovers from panics.
//
// Behavior:
//   - Logs the panic value (as an error), the stack trace, request id and route.
//   - Aborts with 500 and a standardized ErrorResponse carrying the panic as details.
//
// Example:
//
//	router := gin.New()
//	router.Use(middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	log := logger.With("http")
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err := panicError(r)
			rid, _ := c.Get(RequestIDKey)
			log.Error().
				Err(err).
				Str("request_id", toString(rid)).
				Str("route", routeOf(c)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
		}()

		c.Next()
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
