package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

func TestGlobalCountColdThenIncremental(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "a", "live"), widget("w2", "b", "live"), widget("w3", "c", "draft"))

	n, err := f.cache.FilterCount(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.True(t, f.mr.Exists("db:count:widget|1:"))

	for i := 0; i < 4; i++ {
		_, err := f.widgets.Insert(ctx, widget(fmt.Sprintf("n%d", i), fmt.Sprintf("new-%d", i), "live"))
		require.NoError(t, err)
	}

	n, err = f.cache.FilterCount(ctx, model.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, 1, f.widgets.Calls().Count)
}

func TestInsertDoesNotCreateMissingCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.widgets.Insert(ctx, widget("w1", "a", "live"))
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(f.keys.Count(model.WidgetSchema)))

	n, err := f.cache.FilterCount(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPredicateCountCachesZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "a", "live"))

	for i := 0; i < 2; i++ {
		n, err := f.cache.FilterCount(ctx, model.Predicate{"status": "archived"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	}
	assert.Equal(t, 1, f.widgets.Calls().Count)

	key := "db:fc:widget|1:status$archived"
	assert.True(t, f.mr.Exists(key))
	assert.Equal(t, DefaultTTLs().FilterCount, f.mr.TTL(key))
}

func TestPredicateCountIsNotMaintainedByHooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "a", "live"))

	n, err := f.cache.FilterCount(ctx, model.Predicate{"status": "live"})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = f.widgets.Insert(ctx, widget("w2", "b", "live"))
	require.NoError(t, err)

	// Served from cache until the short TTL runs out.
	n, err = f.cache.FilterCount(ctx, model.Predicate{"status": "live"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	f.mr.FastForward(DefaultTTLs().FilterCount)
	n, err = f.cache.FilterCount(ctx, model.Predicate{"status": "live"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// racingBackend creates the counter right after reporting it missing, as a
// concurrent recompute would.
type racingBackend struct {
	cache.Backend
	mr  *miniredis.Miniredis
	key string
}

func (b racingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, found, err := b.Backend.Get(ctx, key)
	if key == b.key && !found {
		_ = b.mr.Set(key, "42")
	}
	return v, found, err
}

func TestColdRecomputeKeepsConcurrentCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.keys.Count(model.WidgetSchema)
	f.widgets.Seed(widget("w1", "a", "live"))

	deps := f.deps
	deps.Backend = racingBackend{Backend: f.backend, mr: f.mr, key: key}
	c := NewEntityCache[model.Widget](f.widgets, deps)

	n, err := c.FilterCount(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := f.mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "42", stored)
}

func TestPredicateCountsWithDelimitersInValuesStayApart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := widget("w1", "a", "live")
	w.OwnerID = "a"
	f.widgets.Seed(w)

	n, err := f.cache.FilterCount(ctx, model.Predicate{"owner_id": "a", "status": "live"})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = f.cache.FilterCount(ctx, model.Predicate{"owner_id": "a-status$live"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 2, f.widgets.Calls().Count)
}
