// service/association_cache.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/dao"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// AssociationCache answers "which of these subjects does this owner have a
// row for", e.g. which widgets a user liked.
type AssociationCache[A model.Association] struct {
	*kindCache
	store dao.AssociationStore[A]
}

func NewAssociationCache[A model.Association](store dao.AssociationStore[A], deps CacheDeps) *AssociationCache[A] {
	return &AssociationCache[A]{
		kindCache: newKindCache(store.Schema(), deps),
		store:     store,
	}
}

// BatchGet returns the association rows of ownerID keyed by subject id.
// Subjects without a row are left out.
func (c *AssociationCache[A]) BatchGet(ctx context.Context, ownerID string, subjectIDs []string) (map[string]A, error) {
	result := make(map[string]A)
	if len(subjectIDs) == 0 {
		return result, nil
	}

	subjectIDs = dedupe(subjectIDs)
	keys := make([]string, len(subjectIDs))
	for i, subjectID := range subjectIDs {
		keys[i] = c.keys.Association(c.schema, ownerID, subjectID)
	}

	hits := c.lookupMany(ctx, cache.KindGet, keys)
	var missing []string
	for i, key := range keys {
		if data, ok := hits[key]; ok {
			var row A
			if c.decode(ctx, key, data, &row) {
				result[subjectIDs[i]] = row
				continue
			}
		}
		missing = append(missing, subjectIDs[i])
	}
	if len(missing) == 0 {
		return result, nil
	}

	rows, err := c.store.FindPairs(ctx, ownerID, missing)
	if err != nil {
		return nil, err
	}
	fill := make(map[string]any, len(rows))
	for _, row := range rows {
		result[row.SubjectKey()] = row
		fill[c.keys.Association(c.schema, row.OwnerKey(), row.SubjectKey())] = row
	}
	c.putMany(ctx, fill, c.ttl.Get)

	logger.Debug("Resolved association batch",
		zap.String("kind", c.schema.Kind),
		zap.String("owner", ownerID),
		zap.Int("requested", len(subjectIDs)),
		zap.Int("loaded", len(rows)))
	return result, nil
}

// Get is BatchGet for a single subject.
func (c *AssociationCache[A]) Get(ctx context.Context, ownerID, subjectID string) (A, bool, error) {
	rows, err := c.BatchGet(ctx, ownerID, []string{subjectID})
	if err != nil {
		var zero A
		return zero, false, err
	}
	row, ok := rows[subjectID]
	return row, ok, nil
}
