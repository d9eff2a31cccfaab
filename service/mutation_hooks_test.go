package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

func TestUpdateWritesThroughAndDropsStaleSecondaryKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.widgets.Insert(ctx, widget("w1", "gear", "live"))
	require.NoError(t, err)

	_, found, err := f.cache.FilterFirst(ctx, model.Predicate{"name": "gear"})
	require.NoError(t, err)
	require.True(t, found)
	_, _, err = f.cache.Get(ctx, "w1")
	require.NoError(t, err)
	f.widgets.ResetCalls()

	_, err = f.widgets.Update(ctx, widget("w1", "cog", "live"))
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(f.nameKey("gear")))

	w, found, err := f.cache.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "cog", w.Name)
	assert.Equal(t, 0, f.widgets.Calls().Get)

	_, found, err = f.cache.FilterFirst(ctx, model.Predicate{"name": "gear"})
	require.NoError(t, err)
	assert.False(t, found)

	w, found, err = f.cache.FilterFirst(ctx, model.Predicate{"name": "cog"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "w1", w.ID)
}

func TestUpdateOfNonUniqueFieldKeepsSecondaryKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "gear", "draft"))

	_, _, err := f.cache.FilterFirst(ctx, model.Predicate{"name": "gear"})
	require.NoError(t, err)

	_, err = f.widgets.Update(ctx, widget("w1", "gear", "live"))
	require.NoError(t, err)
	assert.True(t, f.mr.Exists(f.nameKey("gear")))
	assert.True(t, f.mr.Exists(f.getKey("w1")))
}

func TestDeleteDropsEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "gear", "live"), widget("w2", "cog", "live"))

	_, _, err := f.cache.Get(ctx, "w1")
	require.NoError(t, err)
	_, _, err = f.cache.FilterFirst(ctx, model.Predicate{"name": "gear"})
	require.NoError(t, err)
	n, err := f.cache.FilterCount(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.NoError(t, f.widgets.Delete(ctx, widget("w1", "", "")))

	assert.False(t, f.mr.Exists(f.getKey("w1")))
	assert.False(t, f.mr.Exists(f.nameKey("gear")))
	_, found, err := f.cache.Get(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, found)

	n, err = f.cache.FilterCount(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, f.widgets.Calls().Count)
}

func TestHooksSurviveBackendOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.widgets.Seed(widget("w1", "gear", "live"))
	f.mr.Close()

	assert.NotPanics(t, func() {
		_, err := f.widgets.Insert(ctx, widget("w2", "cog", "live"))
		require.NoError(t, err)
		_, err = f.widgets.Update(ctx, widget("w1", "gear2", "live"))
		require.NoError(t, err)
		require.NoError(t, f.widgets.Delete(ctx, widget("w2", "", "")))
	})
}
