// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"

	"github.com/dev-mohitbeniwal/echo-cache/controller"
	"github.com/dev-mohitbeniwal/echo-cache/middleware"
)

// BreakerStater reports the cache circuit breaker state, e.g.
// cache.GuardedBackend.
type BreakerStater interface {
	State() gobreaker.State
}

// Options carries the host-level dependencies of the router.
type Options struct {
	Limiter           middleware.QuotaConsumer
	RateLimitRequests int
	RateLimitDuration time.Duration
	Registry          *prometheus.Registry
	Breaker           BreakerStater
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Identity())
	router.Use(middleware.Logger())

	router.GET("/healthz", health(opts.Breaker))
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimiter(opts.Limiter, opts.RateLimitRequests, opts.RateLimitDuration))

	controllers.Widget.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}

// health stays 200 while the cache breaker is open: the service degrades
// to store reads but keeps answering.
func health(breaker BreakerStater) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "unknown"
		if breaker != nil {
			state = breaker.State().String()
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": state})
	}
}
