package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Limiter scopes, keys become "ratelimit:<scope>:<key>"
const (
	LimiterComments = "comments"
	LimiterAuth     = "auth"
)

// RateLimiter is a fixed window counter: at most limit hits per key per window
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// Allow counts one hit for key and reports whether it is within the limit
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		logger.Error("Failed to increment rate limit counter", err, map[string]interface{}{
			"key": k,
		})
		return false, err
	}

	// first hit of the window starts the clock
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			logger.Error("Failed to set rate limit window", err, map[string]interface{}{
				"key": k,
			})
			return false, err
		}
	}

	if count > l.limit {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"key":   k,
			"count": count,
			"limit": l.limit,
		})
		return false, nil
	}
	return true, nil
}
