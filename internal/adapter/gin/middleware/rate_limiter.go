package middleware

import (
	"fmt"
	"net/http"

	"user-fixture-service/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// RateLimiter returns a Gin middleware applying a token bucket per route and
// client IP. A nil limiter lets every request through.
func RateLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		// Key: {method}:{route}:{ip}. Requests matching no route share
		// one bucket per client.
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, route, c.ClientIP())

		if !limiter.Allow(c.Request.Context(), key) {
			cfg := limiter.Config()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
