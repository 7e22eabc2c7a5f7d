package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plantdesklabs/plantdesk/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window request counter keyed by client IP and route.
// The window counter lives in redis so limits hold across instances.
type Limiter struct {
	client   *redis.Client
	log      *zap.Logger
	requests int
	window   time.Duration
	enabled  bool
}

func New(cfg config.Config, client *redis.Client, log *zap.Logger) *Limiter {
	enabled := cfg.RateLimit.Enabled && client != nil
	if cfg.RateLimit.Enabled && client == nil {
		log.Warn("rate limiting enabled but no redis address configured, disabling")
	}

	// The window keys on whole seconds; anything shorter divides by zero.
	window := cfg.RateLimit.Window
	if window < time.Second {
		window = time.Second
	}

	return &Limiter{
		client:   client,
		log:      log.Named("ratelimit"),
		requests: cfg.RateLimit.Requests,
		window:   window,
		enabled:  enabled,
	}
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowStart := time.Now().Unix() / int64(l.window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", c.ClientIP(), c.FullPath(), windowStart)

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			// Redis trouble must not take the API down.
			l.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}

		if count > int64(l.requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}
