package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
)

// GuardConfig bounds every backend call and configures the breaker
type GuardConfig struct {
	Name             string
	OpTimeout        time.Duration
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultGuardConfig returns a default configuration for the cache guard
func DefaultGuardConfig(name string) GuardConfig {
	return GuardConfig{
		Name:             name,
		OpTimeout:        200 * time.Millisecond,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      10,
	}
}

// GuardedBackend wraps a Backend so every call carries a bounded timeout
// and runs behind a circuit breaker. Any failure surfaces as
// ErrBackendUnavailable; callers treat that as a miss or skip the write.
type GuardedBackend struct {
	next      Backend
	opTimeout time.Duration
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Collector
}

func NewGuardedBackend(next Backend, cfg GuardConfig, collector *metrics.Collector) *GuardedBackend {
	g := &GuardedBackend{next: next, opTimeout: cfg.OpTimeout, metrics: collector}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Cache circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			collector.BreakerState(name, int(to))
		},
	})
	return g
}

// State exposes the breaker state for health reporting.
func (g *GuardedBackend) State() gobreaker.State {
	return g.breaker.State()
}

func (g *GuardedBackend) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.opTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.opTimeout)
			defer cancel()
		}
		return nil, fn(callCtx)
	})
	if err != nil {
		g.metrics.BackendError(op)
		return fmt.Errorf("cache %s: %w: %w", op, echo_errors.ErrBackendUnavailable, err)
	}
	return nil
}

func (g *GuardedBackend) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	err = g.do(ctx, "get", func(ctx context.Context) error {
		var innerErr error
		value, found, innerErr = g.next.Get(ctx, key)
		return innerErr
	})
	return value, found, err
}

func (g *GuardedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.do(ctx, "set", func(ctx context.Context) error {
		return g.next.Set(ctx, key, value, ttl)
	})
}

func (g *GuardedBackend) MGet(ctx context.Context, keys []string) (found map[string][]byte, err error) {
	err = g.do(ctx, "mget", func(ctx context.Context) error {
		var innerErr error
		found, innerErr = g.next.MGet(ctx, keys)
		return innerErr
	})
	return found, err
}

func (g *GuardedBackend) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	return g.do(ctx, "mset", func(ctx context.Context) error {
		return g.next.MSet(ctx, values, ttl)
	})
}

func (g *GuardedBackend) Delete(ctx context.Context, key string) error {
	return g.do(ctx, "delete", func(ctx context.Context) error {
		return g.next.Delete(ctx, key)
	})
}

func (g *GuardedBackend) DeleteMany(ctx context.Context, keys []string) error {
	return g.do(ctx, "delete_many", func(ctx context.Context) error {
		return g.next.DeleteMany(ctx, keys)
	})
}

func (g *GuardedBackend) IncrExisting(ctx context.Context, key string, delta int64) (n int64, found bool, err error) {
	err = g.do(ctx, "incr", func(ctx context.Context) error {
		var innerErr error
		n, found, innerErr = g.next.IncrExisting(ctx, key, delta)
		return innerErr
	})
	return n, found, err
}

func (g *GuardedBackend) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (created bool, err error) {
	err = g.do(ctx, "add", func(ctx context.Context) error {
		var innerErr error
		created, innerErr = g.next.Add(ctx, key, value, ttl)
		return innerErr
	})
	return created, err
}

func (g *GuardedBackend) AddMany(ctx context.Context, values map[string][]byte, ttl time.Duration) (created bool, err error) {
	err = g.do(ctx, "add_many", func(ctx context.Context) error {
		var innerErr error
		created, innerErr = g.next.AddMany(ctx, values, ttl)
		return innerErr
	})
	return created, err
}
