// service/kind_cache.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dev-mohitbeniwal/echo-cache/cache"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// TTLs per cache kind. Secondary-key and predicate-count entries are only
// invalidated opportunistically, so they should stay short.
type TTLs struct {
	Get         time.Duration
	FilterFirst time.Duration
	FilterCount time.Duration
	Count       time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Get:         24 * time.Hour,
		FilterFirst: 5 * time.Minute,
		FilterCount: 5 * time.Minute,
		Count:       24 * time.Hour,
	}
}

// CacheDeps are shared by every cache built on one backend.
type CacheDeps struct {
	Backend cache.Backend
	Keys    cache.KeyBuilder
	Codec   cache.Codec
	// SealedCodec is used instead of Codec for schemas marked Sealed.
	SealedCodec cache.Codec
	TTL         TTLs
	Metrics     *metrics.Collector
}

// kindCache is the backend plumbing shared by the entity and association
// caches of one kind. Backend failures never leave this type: reads turn
// them into misses and writes are skipped.
type kindCache struct {
	schema  model.Schema
	backend cache.Backend
	keys    cache.KeyBuilder
	codec   cache.Codec
	ttl     TTLs
	metrics *metrics.Collector
	// flight collapses concurrent store loads of the same key.
	flight singleflight.Group
}

func newKindCache(schema model.Schema, deps CacheDeps) *kindCache {
	codec := deps.Codec
	if codec == nil {
		codec = cache.MsgpackCodec{}
	}
	if schema.Sealed && deps.SealedCodec != nil {
		codec = deps.SealedCodec
	}
	ttl := deps.TTL
	if ttl == (TTLs{}) {
		ttl = DefaultTTLs()
	}
	return &kindCache{
		schema:  schema,
		backend: deps.Backend,
		keys:    deps.Keys,
		codec:   codec,
		ttl:     ttl,
		metrics: deps.Metrics,
	}
}

func (k *kindCache) backendFailed(op string, err error, fields ...zap.Field) {
	logger.Warn("Cache backend call failed, falling back",
		append(fields,
			zap.Error(err),
			zap.String("kind", k.schema.Kind),
			zap.String("op", op))...)
}

// read returns the raw value of key, treating backend failures as a miss.
func (k *kindCache) read(ctx context.Context, cacheKind, key string) ([]byte, bool) {
	data, found, err := k.backend.Get(ctx, key)
	if err != nil {
		k.backendFailed("get", err, zap.String("key", key))
		k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultError, 1)
		return nil, false
	}
	if !found {
		k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultMiss, 1)
		return nil, false
	}
	k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultHit, 1)
	return data, true
}

// decode unpacks a cached snapshot. Undecodable entries are dropped so the
// next read repopulates them.
func (k *kindCache) decode(ctx context.Context, key string, data []byte, v any) bool {
	if err := k.codec.Unmarshal(data, v); err != nil {
		logger.Warn("Dropping undecodable cache entry",
			zap.Error(err),
			zap.String("key", key))
		k.remove(ctx, key)
		return false
	}
	return true
}

func (k *kindCache) encode(v any) ([]byte, bool) {
	data, err := k.codec.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode cache entry",
			zap.Error(err),
			zap.String("kind", k.schema.Kind))
		return nil, false
	}
	return data, true
}

func (k *kindCache) put(ctx context.Context, key string, v any, ttl time.Duration) bool {
	data, ok := k.encode(v)
	if !ok {
		return false
	}
	if err := k.backend.Set(ctx, key, data, ttl); err != nil {
		k.backendFailed("set", err, zap.String("key", key))
		return false
	}
	return true
}

func (k *kindCache) putMany(ctx context.Context, values map[string]any, ttl time.Duration) {
	if len(values) == 0 {
		return
	}
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		if data, ok := k.encode(v); ok {
			encoded[key] = data
		}
	}
	if err := k.backend.MSet(ctx, encoded, ttl); err != nil {
		k.backendFailed("mset", err, zap.Int("keys", len(encoded)))
	}
}

func (k *kindCache) remove(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	if err := k.backend.DeleteMany(ctx, keys); err != nil {
		k.backendFailed("delete", err, zap.Strings("keys", keys))
		return false
	}
	return true
}

// lookupMany runs one multi-get over keys and reports the hits. A backend
// failure makes every key a miss.
func (k *kindCache) lookupMany(ctx context.Context, cacheKind string, keys []string) map[string][]byte {
	found, err := k.backend.MGet(ctx, keys)
	if err != nil {
		k.backendFailed("mget", err, zap.Int("keys", len(keys)))
		k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultError, len(keys))
		return map[string][]byte{}
	}
	k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultHit, len(found))
	k.metrics.CacheLookup(k.schema.Kind, cacheKind, metrics.ResultMiss, len(keys)-len(found))
	return found
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
