// service/mutation_hooks.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

const (
	eventInsert = "insert"
	eventUpdate = "update"
	eventDelete = "delete"
)

// RegisterHooks keeps the cached entries of the kind coherent with writes
// made through the store. Hooks never fail the write; a failed cache call
// is logged and counted and the entry is left to expire.
func (c *EntityCache[T]) RegisterHooks(lc *dao.Lifecycle) {
	kind := c.schema.Kind
	lc.OnInsert(kind, c.afterInsert)
	lc.OnUpdate(kind, c.afterUpdate)
	lc.OnDelete(kind, c.afterDelete)
	logger.Info("Registered cache hooks", zap.String("kind", kind))
}

func (c *EntityCache[T]) afterInsert(ctx context.Context, item model.Entity) {
	c.adjustCount(ctx, 1)
}

func (c *EntityCache[T]) afterUpdate(ctx context.Context, old, updated model.Entity, changed []string) {
	if !c.put(ctx, c.keys.Get(c.schema, updated.PrimaryKey()), updated, c.ttl.Get) {
		c.hookFailed(eventUpdate, updated)
	}

	touched := c.schema.UniqueKeysTouching(changed)
	if len(touched) == 0 {
		return
	}
	stale := make([]string, 0, len(touched))
	for _, cols := range touched {
		stale = append(stale, c.keys.FilterFirst(c.schema, model.PredicateFor(old, cols)))
	}
	if !c.remove(ctx, stale...) {
		c.hookFailed(eventUpdate, updated)
	}
}

func (c *EntityCache[T]) afterDelete(ctx context.Context, item model.Entity) {
	stale := []string{c.keys.Get(c.schema, item.PrimaryKey())}
	for _, cols := range c.schema.UniqueKeys {
		stale = append(stale, c.keys.FilterFirst(c.schema, model.PredicateFor(item, cols)))
	}
	if !c.remove(ctx, stale...) {
		c.hookFailed(eventDelete, item)
	}
	c.adjustCount(ctx, -1)
}

func (k *kindCache) hookFailed(event string, item model.Entity) {
	k.metrics.HookFailure(k.schema.Kind, event)
	logger.Warn("Cache hook could not update the backend",
		zap.String("kind", k.schema.Kind),
		zap.String("event", event),
		zap.String("id", item.PrimaryKey()))
}

// RegisterHooks writes association rows through on insert and update and
// drops them on delete.
func (c *AssociationCache[A]) RegisterHooks(lc *dao.Lifecycle) {
	kind := c.schema.Kind
	lc.OnInsert(kind, func(ctx context.Context, item model.Entity) {
		c.writeThrough(ctx, eventInsert, item)
	})
	lc.OnUpdate(kind, func(ctx context.Context, _, updated model.Entity, _ []string) {
		c.writeThrough(ctx, eventUpdate, updated)
	})
	lc.OnDelete(kind, func(ctx context.Context, item model.Entity) {
		row, ok := item.(A)
		if !ok {
			return
		}
		if !c.remove(ctx, c.keys.Association(c.schema, row.OwnerKey(), row.SubjectKey())) {
			c.hookFailed(eventDelete, item)
		}
	})
	logger.Info("Registered cache hooks", zap.String("kind", kind))
}

func (c *AssociationCache[A]) writeThrough(ctx context.Context, event string, item model.Entity) {
	row, ok := item.(A)
	if !ok {
		logger.Error("Association hook received a foreign entity",
			zap.String("kind", c.schema.Kind),
			zap.String("event", event))
		return
	}
	if !c.put(ctx, c.keys.Association(c.schema, row.OwnerKey(), row.SubjectKey()), row, c.ttl.Get) {
		c.hookFailed(event, item)
	}
}
