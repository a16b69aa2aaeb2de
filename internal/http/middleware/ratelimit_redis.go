package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const redisTimeout = 500 * time.Millisecond

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE,
// shared by every instance. key format: board:rl:<window_seconds>:<ip>.
// With a nil client it falls back to the in-process SimpleRateLimit.
func RedisRateLimit(client *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return SimpleRateLimit(maxRequests, window)
	}

	return func(c *gin.Context) {
		key := "board:rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allow(c, client, key, maxRequests, window, "api") {
			return
		}
		c.Next()
	}
}

// UserLimiter is a per-user fixed-window limiter shared by every instance.
// key format: board:user_rl:<user>:<window_seconds>.
type UserLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

func NewUserLimiter(client *redis.Client, maxRequests int, window time.Duration) *UserLimiter {
	return &UserLimiter{client: client, maxRequests: maxRequests, window: window}
}

func (l *UserLimiter) key(user string) string {
	return "board:user_rl:" + user + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10)
}

// Allow counts one request for user. A nil client or a Redis error allows it;
// the error is returned so callers can report it.
func (l *UserLimiter) Allow(ctx context.Context, user string) (bool, error) {
	if l.client == nil {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := count(ctx, l.client, l.key(user), l.window)
	if err != nil {
		return true, err
	}
	if val > int64(l.maxRequests) {
		RLBlocked.WithLabelValues("user:ws").Inc()
		return false, nil
	}
	RLRequests.WithLabelValues("user:ws").Inc()
	return true, nil
}

// Middleware limits requests per authenticated user rather than per IP.
// Run JWT before it.
func (l *UserLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.client == nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
		if !allow(c, l.client, l.key(User(c)), l.maxRequests, l.window, "user") {
			return
		}
		c.Next()
	}
}

// UserRateLimit is NewUserLimiter(client, maxRequests, window).Middleware().
func UserRateLimit(client *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return NewUserLimiter(client, maxRequests, window).Middleware()
}

// allow counts the request and aborts with 429 when over the limit. Redis
// errors fail open.
func allow(c *gin.Context, client *redis.Client, key string, maxRequests int, window time.Duration, scope string) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), redisTimeout)
	defer cancel()

	val, err := count(ctx, client, key, window)
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(scope + ":" + c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return false
	}

	RLRequests.WithLabelValues(scope + ":" + c.FullPath()).Inc()
	return true
}

// count increments key, starting its window on the first hit.
func count(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	val, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		client.Expire(ctx, key, window)
	}
	return val, nil
}
