package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend is a single-process Backend on patrickmn/go-cache, used for
// local development and tests. Writes are serialised so multi-key operations
// are atomic, matching the Redis scripts.
type MemoryBackend struct {
	mu    sync.Mutex
	items *gocache.Cache
}

func NewMemoryBackend(cleanupInterval time.Duration) *MemoryBackend {
	return &MemoryBackend{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v.([]byte)...), true, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Set(key, append([]byte(nil), value...), expiration(ttl))
	return nil
}

func (m *MemoryBackend) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.items.Get(k); ok {
			found[k] = append([]byte(nil), v.([]byte)...)
		}
	}
	return found, nil
}

func (m *MemoryBackend) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.items.Set(k, append([]byte(nil), v...), expiration(ttl))
	}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	return m.DeleteMany(ctx, []string{key})
}

func (m *MemoryBackend) DeleteMany(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

func (m *MemoryBackend) IncrExisting(ctx context.Context, key string, delta int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	v, expiresAt, ok := m.items.GetWithExpiration(key)
	if !ok {
		return 0, false, nil
	}
	current, err := strconv.ParseInt(string(v.([]byte)), 10, 64)
	if err != nil {
		return 0, false, err
	}
	ttl := gocache.NoExpiration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return 0, false, nil
		}
	}
	current += delta
	m.items.Set(key, []byte(strconv.FormatInt(current, 10)), ttl)
	return current, true, nil
}

func (m *MemoryBackend) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Add(key, append([]byte(nil), value...), expiration(ttl)) == nil, nil
}

func (m *MemoryBackend) AddMany(ctx context.Context, values map[string][]byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range values {
		if _, ok := m.items.Get(k); ok {
			return false, nil
		}
	}
	for k, v := range values {
		m.items.Set(k, append([]byte(nil), v...), expiration(ttl))
	}
	return true, nil
}

// Flush drops every entry.
func (m *MemoryBackend) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Flush()
}
