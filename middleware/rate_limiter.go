// middleware/rate_limiter.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/service"
)

// QuotaConsumer is satisfied by service.RateLimitService.
type QuotaConsumer interface {
	Consume(ctx context.Context, bucket string, limit int, window time.Duration) (service.RateQuota, error)
}

// RateLimiter admits limit requests per window for each caller. Callers are
// identified by user id when Identity ran first, by client IP otherwise.
func RateLimiter(limiter QuotaConsumer, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(userIDKey); userID != "" {
			key = "user:" + userID
		}

		quota, err := limiter.Consume(c.Request.Context(), key, limit, per)

		var exceeded *echo_errors.LimitExceededError
		if err != nil && !errors.As(err, &exceeded) {
			logger.Error("Rate limiting failed", zap.Error(err), zap.String("bucket", key))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiting failed"})
			c.Abort()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ceilSeconds(quota.ResetIn), 10))

		if exceeded != nil {
			c.Header("Retry-After", strconv.FormatInt(exceeded.RetryAfterSeconds(), 10))
			logger.Warn("Rate limit exceeded",
				zap.String("bucket", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
