package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/service"
)

func setupRouter(limiter QuotaConsumer, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.Use(Logger())
	r.Use(RateLimiter(limiter, limit, time.Minute))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func newLimiter(t *testing.T) *service.RateLimitService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return service.NewRateLimitService(cache.NewRedisBackend(client), cache.NewKeyBuilder("test"), nil)
}

func get(r *gin.Engine, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterHeaders(t *testing.T) {
	r := setupRouter(newLimiter(t), 2)

	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, w.Header().Get("Retry-After"))

	w = get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiterBucketsPerUser(t *testing.T) {
	r := setupRouter(newLimiter(t), 1)

	assert.Equal(t, http.StatusOK, get(r, "u1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "u1").Code)
	assert.Equal(t, http.StatusOK, get(r, "u2").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Consume(context.Context, string, int, time.Duration) (service.RateQuota, error) {
	return service.RateQuota{}, errors.New("rate limit and window must be positive")
}

func TestRateLimiterInternalError(t *testing.T) {
	r := setupRouter(brokenLimiter{}, 1)

	w := get(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIdentitySetsUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(userIDKey))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set(UserIDHeader, "u7")
	r.ServeHTTP(w, req)
	assert.Equal(t, "u7", w.Body.String())
}
