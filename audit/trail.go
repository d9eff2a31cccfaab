// audit/trail.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/util"
)

// Event types published after a committed write.
const (
	EventInserted = "entity.inserted"
	EventUpdated  = "entity.updated"
	EventDeleted  = "entity.deleted"
)

// MutationEvent is the payload of the entity.* events.
type MutationEvent struct {
	Kind    string
	Action  string
	Entity  model.Entity
	Changed []string
	At      time.Time
}

// Trail turns store writes into audit entries. The lifecycle hooks only
// enqueue; indexing happens on the event bus workers so a slow or absent
// Elasticsearch never delays a write.
type Trail struct {
	svc Service
	bus *util.EventBus
	now func() time.Time
}

func NewTrail(svc Service, bus *util.EventBus) *Trail {
	t := &Trail{svc: svc, bus: bus, now: time.Now}
	bus.Subscribe(EventInserted, t.handle)
	bus.Subscribe(EventUpdated, t.handle)
	bus.Subscribe(EventDeleted, t.handle)
	return t
}

// Track publishes an event for every write of the given kinds.
func (t *Trail) Track(lc *dao.Lifecycle, kinds ...string) {
	for _, kind := range kinds {
		kind := kind
		lc.OnInsert(kind, func(ctx context.Context, item model.Entity) {
			t.publish(ctx, EventInserted, MutationEvent{Kind: kind, Action: ActionInsert, Entity: item})
		})
		lc.OnUpdate(kind, func(ctx context.Context, _, updated model.Entity, changed []string) {
			t.publish(ctx, EventUpdated, MutationEvent{Kind: kind, Action: ActionUpdate, Entity: updated, Changed: changed})
		})
		lc.OnDelete(kind, func(ctx context.Context, item model.Entity) {
			t.publish(ctx, EventDeleted, MutationEvent{Kind: kind, Action: ActionDelete, Entity: item})
		})
	}
}

func (t *Trail) publish(ctx context.Context, eventType string, ev MutationEvent) {
	ev.At = t.now()
	t.bus.Publish(ctx, eventType, ev)
}

func (t *Trail) handle(ctx context.Context, event util.Event) error {
	ev, ok := event.Payload.(MutationEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	snapshot, err := json.Marshal(ev.Entity.Fields())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	log := AuditLog{
		ID:            uuid.NewString(),
		Timestamp:     ev.At,
		Kind:          ev.Kind,
		EntityID:      ev.Entity.PrimaryKey(),
		Action:        ev.Action,
		ChangedFields: ev.Changed,
		Snapshot:      snapshot,
	}
	if err := t.svc.LogMutation(ctx, log); err != nil {
		logger.Warn("Failed to record audit entry",
			zap.Error(err),
			zap.String("kind", log.Kind),
			zap.String("entityID", log.EntityID))
		return err
	}
	return nil
}
