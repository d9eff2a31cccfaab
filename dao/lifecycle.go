// dao/lifecycle.go
package dao

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// InsertHook runs after a row was inserted.
type InsertHook func(ctx context.Context, item model.Entity)

// UpdateHook runs after a row was updated; changed lists the columns whose
// value differs between old and updated.
type UpdateHook func(ctx context.Context, old, updated model.Entity, changed []string)

// DeleteHook runs after a row was deleted.
type DeleteHook func(ctx context.Context, item model.Entity)

// Lifecycle holds typed after-write callbacks per entity kind. Hooks are
// registered at startup and run synchronously after the write committed;
// they cannot fail the write.
type Lifecycle struct {
	mu     sync.RWMutex
	insert map[string][]InsertHook
	update map[string][]UpdateHook
	delete map[string][]DeleteHook
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		insert: make(map[string][]InsertHook),
		update: make(map[string][]UpdateHook),
		delete: make(map[string][]DeleteHook),
	}
}

func (l *Lifecycle) OnInsert(kind string, fn InsertHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.insert[kind] = append(l.insert[kind], fn)
}

func (l *Lifecycle) OnUpdate(kind string, fn UpdateHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.update[kind] = append(l.update[kind], fn)
}

func (l *Lifecycle) OnDelete(kind string, fn DeleteHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delete[kind] = append(l.delete[kind], fn)
}

func (l *Lifecycle) FireInsert(ctx context.Context, kind string, item model.Entity) {
	if l == nil {
		return
	}
	l.mu.RLock()
	hooks := l.insert[kind]
	l.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, item)
	}
}

func (l *Lifecycle) FireUpdate(ctx context.Context, kind string, old, updated model.Entity, changed []string) {
	if l == nil {
		return
	}
	l.mu.RLock()
	hooks := l.update[kind]
	l.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, old, updated, changed)
	}
}

func (l *Lifecycle) FireDelete(ctx context.Context, kind string, item model.Entity) {
	if l == nil {
		return
	}
	l.mu.RLock()
	hooks := l.delete[kind]
	l.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, item)
	}
}

// ChangedFields lists the columns whose values differ, in sorted order.
func ChangedFields(old, updated model.Entity) []string {
	before := old.Fields()
	after := updated.Fields()
	var changed []string
	for col, v := range after {
		if !fieldEqual(before[col], v) {
			changed = append(changed, col)
		}
	}
	for col := range before {
		if _, ok := after[col]; !ok {
			changed = append(changed, col)
		}
	}
	sort.Strings(changed)
	return changed
}

func fieldEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
