package service

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/dao"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/test/mock"
)

type fixture struct {
	mr      *miniredis.Miniredis
	backend cache.Backend
	keys    cache.KeyBuilder
	deps    CacheDeps
	lc      *dao.Lifecycle
	metrics *metrics.Collector
	widgets *mock.MemoryStore[model.Widget]
	likes   *mock.MemoryStore[model.WidgetLike]
	cache   *EntityCache[model.Widget]
	liked   *AssociationCache[model.WidgetLike]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		mr:      mr,
		backend: cache.NewRedisBackend(client),
		keys:    cache.NewKeyBuilder("db"),
		lc:      dao.NewLifecycle(),
		metrics: metrics.NewCollector("test"),
	}
	f.deps = CacheDeps{
		Backend: f.backend,
		Keys:    f.keys,
		Codec:   cache.MsgpackCodec{},
		TTL:     DefaultTTLs(),
		Metrics: f.metrics,
	}
	f.widgets = mock.NewMemoryStore[model.Widget](model.WidgetSchema, f.lc)
	f.likes = mock.NewMemoryStore[model.WidgetLike](model.WidgetLikeSchema, f.lc)
	f.cache = NewEntityCache[model.Widget](f.widgets, f.deps)
	f.cache.RegisterHooks(f.lc)
	f.liked = NewAssociationCache[model.WidgetLike](f.likes, f.deps)
	f.liked.RegisterHooks(f.lc)
	return f
}

func (f *fixture) getKey(id string) string {
	return f.keys.Get(model.WidgetSchema, id)
}

func (f *fixture) nameKey(name string) string {
	return f.keys.FilterFirst(model.WidgetSchema, model.Predicate{"name": name})
}

func widget(id, name, status string) model.Widget {
	return model.Widget{ID: id, Name: name, OwnerID: "u1", Status: status}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
