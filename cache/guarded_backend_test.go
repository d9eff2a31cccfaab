package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
)

// slowBackend blocks until the call's context is done.
type slowBackend struct {
	Backend
	calls int
}

func (s *slowBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.calls++
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func TestGuardedBackendTimesOut(t *testing.T) {
	cfg := DefaultGuardConfig("test")
	cfg.OpTimeout = 20 * time.Millisecond
	g := NewGuardedBackend(&slowBackend{}, cfg, nil)

	start := time.Now()
	_, found, err := g.Get(context.Background(), "k")
	assert.False(t, found)
	assert.True(t, errors.Is(err, echo_errors.ErrBackendUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardedBackendOpensBreaker(t *testing.T) {
	cfg := DefaultGuardConfig("test")
	cfg.OpTimeout = 5 * time.Millisecond
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	inner := &slowBackend{}
	g := NewGuardedBackend(inner, cfg, nil)

	for i := 0; i < 3; i++ {
		_, _, err := g.Get(context.Background(), "k")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, _, err := g.Get(context.Background(), "k")
	assert.True(t, errors.Is(err, echo_errors.ErrBackendUnavailable))
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the backend")
}

func TestGuardedBackendPassesThrough(t *testing.T) {
	ctx := context.Background()
	g := NewGuardedBackend(NewMemoryBackend(time.Minute), DefaultGuardConfig("test"), nil)

	require.NoError(t, g.Set(ctx, "k", []byte("v"), time.Minute))
	v, found, err := g.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(v))

	ok, err := g.AddMany(ctx, map[string][]byte{"a": []byte("1")}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	n, found, err := g.IncrExisting(ctx, "a", 2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), n)
}
