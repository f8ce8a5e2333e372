package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
)

// Limiter decides whether key may make one more request in the current window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitByIP rejects clients that exceed the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimitByIP(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("Rate limiter unavailable", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"ip": c.ClientIP(),
			})
			apperrors.TooManyRequests(c, apperrors.RateLimitExceeded, "Too many requests, try again later")
			return
		}

		c.Next()
	}
}
