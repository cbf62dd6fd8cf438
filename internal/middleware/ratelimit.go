package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/guttosm/stockcast/internal/domain/dto"
)

// Defaults for RateLimiter: limit requests per window per client IP.
// Package-level so tests can shrink them.
var (
	window = time.Minute
	limit  = 60
)

// RateLimiter limits requests per client IP with a token bucket.
//
// Behavior:
//   - Each IP gets a rate.Limiter refilling limit tokens per window, burst limit.
//   - Limiters live in a go-cache store and expire after 3 idle windows.
//   - When the bucket is empty the request is aborted with 429 and a Retry-After header.
//
// Every call builds its own store, so two routers never share buckets.
func RateLimiter() gin.HandlerFunc {
	w, l := window, limit
	every := rate.Every(w / time.Duration(l))
	store := cache.New(3*w, 6*w)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var lim *rate.Limiter
		if v, ok := store.Get(ip); ok {
			lim = v.(*rate.Limiter)
		} else {
			lim = rate.NewLimiter(every, l)
			if err := store.Add(ip, lim, cache.DefaultExpiration); err != nil {
				// lost the race to another request from the same IP
				if v, ok := store.Get(ip); ok {
					lim = v.(*rate.Limiter)
				}
			}
		}

		if !lim.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		store.SetDefault(ip, lim)

		c.Next()
	}
}
