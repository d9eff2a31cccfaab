// service/count_cache.go
package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// FilterCount counts the rows matching pred. With an empty pred the global
// counter of the kind is used: it is recomputed only when absent and kept
// current by the mutation hooks. Predicate counts are recomputed on miss
// and simply expire.
func (c *EntityCache[T]) FilterCount(ctx context.Context, pred model.Predicate) (int64, error) {
	global := len(pred) == 0
	key := c.keys.Count(c.schema)
	cacheKind := cache.KindCount
	ttl := c.ttl.Count
	if !global {
		key = c.keys.FilterCount(c.schema, pred)
		cacheKind = cache.KindFilterCount
		ttl = c.ttl.FilterCount
	}

	if data, ok := c.read(ctx, cacheKind, key); ok {
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err == nil {
			return n, nil
		}
		logger.Warn("Dropping malformed count entry", zap.String("key", key), zap.Error(err))
		c.remove(ctx, key)
	}

	n, err := c.store.Count(ctx, pred)
	if err != nil {
		return 0, err
	}

	value := []byte(strconv.FormatInt(n, 10))
	if global {
		// A hook may have created the counter meanwhile; its value wins.
		if _, err := c.backend.Add(ctx, key, value, ttl); err != nil {
			c.backendFailed("add", err, zap.String("key", key))
		}
		return n, nil
	}
	if err := c.backend.Set(ctx, key, value, ttl); err != nil {
		c.backendFailed("set", err, zap.String("key", key))
	}
	return n, nil
}

// adjustCount moves the global counter by delta if it is cached.
func (k *kindCache) adjustCount(ctx context.Context, delta int64) {
	key := k.keys.Count(k.schema)
	if _, _, err := k.backend.IncrExisting(ctx, key, delta); err != nil {
		k.backendFailed("incr", err, zap.String("key", key))
		k.metrics.HookFailure(k.schema.Kind, "count")
	}
}
