// metrics/prometheus.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Collector owns a private registry with the cache layer's metrics. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	backendErrors    *prometheus.CounterVec
	hookFailures     *prometheus.CounterVec
	storeDuration    *prometheus.HistogramVec
	rateLimitResults *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by entity kind, cache kind and result",
		},
		[]string{"kind", "cache", "result"},
	)
	c.backendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "backend_errors_total",
			Help:      "Cache backend calls that failed or timed out",
		},
		[]string{"op"},
	)
	c.hookFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hook_failures_total",
			Help:      "Best-effort mutation hook side effects that were skipped",
		},
		[]string{"kind", "event"},
	)
	c.storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Entity store query latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind", "op"},
	)
	c.rateLimitResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Rate limit decisions",
		},
		[]string{"result"},
	)
	c.breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	c.registry.MustRegister(
		c.cacheLookups,
		c.backendErrors,
		c.hookFailures,
		c.storeDuration,
		c.rateLimitResults,
		c.breakerState,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

func (c *Collector) CacheLookup(kind, cache, result string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.cacheLookups.WithLabelValues(kind, cache, result).Add(float64(n))
}

func (c *Collector) BackendError(op string) {
	if c == nil {
		return
	}
	c.backendErrors.WithLabelValues(op).Inc()
}

func (c *Collector) HookFailure(kind, event string) {
	if c == nil {
		return
	}
	c.hookFailures.WithLabelValues(kind, event).Inc()
}

func (c *Collector) ObserveStore(kind, op string, d time.Duration) {
	if c == nil {
		return
	}
	c.storeDuration.WithLabelValues(kind, op).Observe(d.Seconds())
}

func (c *Collector) RateLimit(result string) {
	if c == nil {
		return
	}
	c.rateLimitResults.WithLabelValues(result).Inc()
}

func (c *Collector) BreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(name).Set(float64(state))
}
