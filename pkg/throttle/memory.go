package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps counters in process memory. Counters are not shared
// between instances.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemoryStore returns an empty store that sweeps expired keys every
// cleanup interval.
func NewMemoryStore(cleanup time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.c.Add(key, int64(1), ttl); err == nil {
		return 1, nil
	}
	n, err := m.c.IncrementInt64(key, 1)
	if err != nil {
		return 0, fmt.Errorf("throttle: incr %s: %w", key, err)
	}
	return n, nil
}

func (m *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return 0, nil
	}
	n, _ := v.(int64)
	return n, nil
}

func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.c.Get(key); ok {
		m.c.Set(key, v, ttl)
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	return b, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
