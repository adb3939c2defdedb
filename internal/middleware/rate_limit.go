package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/types"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window counter stored in Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "recepti:rate_limit"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Middleware limits requests per client IP. Redis failures let the request
// through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			rl.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.NewErrorResponse(
				types.CodeRateLimited,
				types.MsgRateLimitExceeded,
				gin.H{"limit": rl.config.Limit, "window": rl.config.Window.String(), "retryAfter": retryAfter},
			))
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for key and reports whether it fits the window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}
