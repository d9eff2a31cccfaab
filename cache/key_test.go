package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

func TestKeyBuilder(t *testing.T) {
	b := NewKeyBuilder("db")
	s := model.Schema{Kind: "widget", Version: 2}

	assert.Equal(t, "db:get:widget|2:1", b.Get(s, "1"))
	assert.Equal(t, "db:ff:widget|2:name$a", b.FilterFirst(s, model.Predicate{"name": "a"}))
	assert.Equal(t, "db:fc:widget|2:owner_id$u-status$open", b.FilterCount(s, model.Predicate{"status": "open", "owner_id": "u"}))
	assert.Equal(t, "db:count:widget|2:", b.Count(s))
	assert.Equal(t, "db:rl:ip:1$c", b.RateCount("ip:1"))
	assert.Equal(t, "db:rl:ip:1$r", b.RateReset("ip:1"))
}

func TestKeyBuilderKindsNeverCollide(t *testing.T) {
	b := NewKeyBuilder("db")
	s := model.Schema{Kind: "widget", Version: 1}
	p := model.Predicate{"name": "a"}

	keys := []string{b.Get(s, "name$a"), b.FilterFirst(s, p), b.FilterCount(s, p), b.Count(s)}
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], k)
		seen[k] = true
	}
}

func TestAssociationKeyMatchesRowKey(t *testing.T) {
	b := NewKeyBuilder("db")
	like := model.WidgetLike{WidgetID: "w1", UserID: "u1"}

	assert.Equal(t, b.Get(model.WidgetLikeSchema, like.PrimaryKey()), b.Association(model.WidgetLikeSchema, "u1", "w1"))
}

func TestAssociationKeysWithDashedIdsNeverCollide(t *testing.T) {
	b := NewKeyBuilder("db")
	s := model.WidgetLikeSchema

	assert.NotEqual(t, b.Association(s, "x", "w1-u"), b.Association(s, "u-x", "w1"))
	assert.Equal(t, b.Get(s, model.WidgetLike{WidgetID: "w1-u", UserID: "x"}.PrimaryKey()), b.Association(s, "x", "w1-u"))
}

func TestPredicateKeysWithDelimitersNeverCollide(t *testing.T) {
	b := NewKeyBuilder("db")
	s := model.Schema{Kind: "widget", Version: 1}

	two := model.Predicate{"owner_id": "a", "status": "live"}
	one := model.Predicate{"owner_id": "a-status$live"}
	assert.NotEqual(t, b.FilterCount(s, two), b.FilterCount(s, one))
	assert.NotEqual(t, b.FilterFirst(s, two), b.FilterFirst(s, one))
}
