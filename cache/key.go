package cache

import (
	"fmt"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// Cache kinds. Each gets its own key prefix so entries of different kinds
// never collide.
const (
	KindGet         = "get"
	KindFilterFirst = "ff"
	KindFilterCount = "fc"
	KindCount       = "count"
)

// KeyBuilder derives deterministic cache keys:
//
//	{namespace}:{cache kind}:{entity kind}|{version}:{discriminator}
type KeyBuilder struct {
	Namespace string
}

func NewKeyBuilder(namespace string) KeyBuilder {
	return KeyBuilder{Namespace: namespace}
}

func (b KeyBuilder) Prefix(s model.Schema, cacheKind string) string {
	return fmt.Sprintf("%s:%s:%s|%d:", b.Namespace, cacheKind, s.Kind, s.Version)
}

func (b KeyBuilder) Get(s model.Schema, id string) string {
	return b.Prefix(s, KindGet) + id
}

func (b KeyBuilder) FilterFirst(s model.Schema, p model.Predicate) string {
	return b.Prefix(s, KindFilterFirst) + p.Discriminator()
}

func (b KeyBuilder) FilterCount(s model.Schema, p model.Predicate) string {
	return b.Prefix(s, KindFilterCount) + p.Discriminator()
}

func (b KeyBuilder) Count(s model.Schema) string {
	return b.Prefix(s, KindCount)
}

// Association keys live under the get prefix of the association kind, with
// the subject first as in the row's composite primary key.
func (b KeyBuilder) Association(s model.Schema, ownerID, subjectID string) string {
	return b.Get(s, model.CompositeKey(subjectID, ownerID))
}

func (b KeyBuilder) RateCount(bucket string) string {
	return fmt.Sprintf("%s:rl:%s$c", b.Namespace, bucket)
}

func (b KeyBuilder) RateReset(bucket string) string {
	return fmt.Sprintf("%s:rl:%s$r", b.Namespace, bucket)
}
