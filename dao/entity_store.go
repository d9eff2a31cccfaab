// dao/entity_store.go
package dao

import (
	"context"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// EntityStore is the authoritative, read side of one entity kind. Absence
// is reported through the found flag; errors are always store failures.
type EntityStore[T model.Entity] interface {
	Schema() model.Schema
	Get(ctx context.Context, id string) (T, bool, error)
	GetIn(ctx context.Context, ids []string) ([]T, error)
	// FindFirst returns at most one row matching every column of pred.
	FindFirst(ctx context.Context, pred model.Predicate) (T, bool, error)
	// Count counts rows matching pred; an empty pred counts all rows.
	Count(ctx context.Context, pred model.Predicate) (int64, error)
}

// AssociationStore looks up owner/subject pairs.
type AssociationStore[A model.Association] interface {
	Schema() model.Schema
	FindPairs(ctx context.Context, ownerID string, subjectIDs []string) ([]A, error)
}

// EntityWriter mutates rows and fires the lifecycle hooks after each
// successful write.
type EntityWriter[T model.Entity] interface {
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, item T) error
}
