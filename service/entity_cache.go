// service/entity_cache.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/dao"
	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// EntityCache is the read-through cache of one entity kind. Reads go to the
// backend first and fall back to the store; only rows that exist are cached.
type EntityCache[T model.Entity] struct {
	*kindCache
	store dao.EntityStore[T]
}

func NewEntityCache[T model.Entity](store dao.EntityStore[T], deps CacheDeps) *EntityCache[T] {
	return &EntityCache[T]{
		kindCache: newKindCache(store.Schema(), deps),
		store:     store,
	}
}

func (c *EntityCache[T]) Schema() model.Schema {
	return c.schema
}

// Get returns the row with the given primary key. found is false when the
// store has no such row.
func (c *EntityCache[T]) Get(ctx context.Context, id string) (T, bool, error) {
	key := c.keys.Get(c.schema, id)
	var item T
	if data, ok := c.read(ctx, cache.KindGet, key); ok {
		if c.decode(ctx, key, data, &item) {
			return item, true, nil
		}
	}

	// The shared load outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := c.flight.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		item, found, err := c.store.Get(loadCtx, id)
		if err != nil || !found {
			return loadResult[T]{}, err
		}
		c.put(loadCtx, key, item, c.ttl.Get)
		return loadResult[T]{item: item, found: true}, nil
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		loaded := res.Val.(loadResult[T])
		return loaded.item, loaded.found, nil
	}
}

// sharedLoadTimeout bounds a coalesced store load once it is detached from
// the caller that started it.
const sharedLoadTimeout = 30 * time.Second

type loadResult[T any] struct {
	item  T
	found bool
}

// GetOrNotFound is Get for request boundaries: absence becomes a
// *NotFoundError.
func (c *EntityCache[T]) GetOrNotFound(ctx context.Context, id string) (T, error) {
	item, found, err := c.Get(ctx, id)
	if err != nil {
		return item, err
	}
	if !found {
		return item, &echo_errors.NotFoundError{Kind: c.schema.Kind, Key: id}
	}
	return item, nil
}

// GetDict resolves many primary keys with one multi-get, one store query
// for the misses and one multi-set. Ids without a row are left out.
func (c *EntityCache[T]) GetDict(ctx context.Context, ids []string) (map[string]T, error) {
	result := make(map[string]T)
	if len(ids) == 0 {
		return result, nil
	}

	ids = dedupe(ids)
	keyToID := make(map[string]string, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		key := c.keys.Get(c.schema, id)
		keyToID[key] = id
		keys = append(keys, key)
	}

	hits := c.lookupMany(ctx, cache.KindGet, keys)
	var missing []string
	for _, key := range keys {
		id := keyToID[key]
		data, ok := hits[key]
		if ok {
			var item T
			if c.decode(ctx, key, data, &item) {
				result[id] = item
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	rows, err := c.store.GetIn(ctx, missing)
	if err != nil {
		return nil, err
	}
	fill := make(map[string]any, len(rows))
	for _, row := range rows {
		id := row.PrimaryKey()
		result[id] = row
		fill[c.keys.Get(c.schema, id)] = row
	}
	c.putMany(ctx, fill, c.ttl.Get)

	logger.Debug("Resolved entity batch",
		zap.String("kind", c.schema.Kind),
		zap.Int("requested", len(ids)),
		zap.Int("cached", len(ids)-len(missing)),
		zap.Int("loaded", len(rows)))
	return result, nil
}

// GetMany is GetDict ordered like ids, skipping ids without a row.
// Duplicate ids yield duplicate entries.
func (c *EntityCache[T]) GetMany(ctx context.Context, ids []string) ([]T, error) {
	byID, err := c.GetDict(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// FilterFirst looks a row up by one of the kind's unique field sets.
func (c *EntityCache[T]) FilterFirst(ctx context.Context, pred model.Predicate) (T, bool, error) {
	var item T
	if !c.schema.IsUnique(pred.Columns()) {
		return item, false, fmt.Errorf("%s %v: %w", c.schema.Kind, pred.Columns(), echo_errors.ErrPredicateNotUnique)
	}

	key := c.keys.FilterFirst(c.schema, pred)
	if data, ok := c.read(ctx, cache.KindFilterFirst, key); ok {
		if c.decode(ctx, key, data, &item) {
			return item, true, nil
		}
	}

	item, found, err := c.store.FindFirst(ctx, pred)
	if err != nil || !found {
		return item, false, err
	}
	c.put(ctx, key, item, c.ttl.FilterFirst)
	return item, true, nil
}

// FirstOrNotFound is FilterFirst for request boundaries.
func (c *EntityCache[T]) FirstOrNotFound(ctx context.Context, pred model.Predicate) (T, error) {
	item, found, err := c.FilterFirst(ctx, pred)
	if err != nil {
		return item, err
	}
	if !found {
		return item, &echo_errors.NotFoundError{Kind: c.schema.Kind, Key: pred.Discriminator()}
	}
	return item, nil
}
