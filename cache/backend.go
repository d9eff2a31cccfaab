// Package cache holds the key/value backends the entity caches and the rate
// limiter are built on, plus key layout and value codecs.
package cache

import (
	"context"
	"time"
)

// Backend is a volatile key/value store with TTLs and atomic counters.
// Get-style calls report absence through the found flag, never through an
// error; an error always means the backend could not answer.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// MGet returns only the keys that were found.
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	// IncrExisting atomically adds delta to an integer key. Missing keys are
	// left alone and reported with found=false. The key's TTL is preserved.
	IncrExisting(ctx context.Context, key string, delta int64) (int64, bool, error)
	// Add sets key only if it does not exist.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// AddMany creates every key with the same TTL, or none of them if any
	// key already exists.
	AddMany(ctx context.Context, values map[string][]byte, ttl time.Duration) (bool, error)
}
