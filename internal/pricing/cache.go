package pricing

import (
	"sync"
	"time"
)

// CacheTTL is how long a resolved price stays fresh.
const CacheTTL = 60 * time.Second

type cacheEntry[V any] struct {
	data      V
	timestamp time.Time
}

// Cache is a TTL-bounded key/value store. Entries expire purely by age,
// independent of access, and are evicted lazily on read; there is no
// background sweep and no size bound (the key space is a handful of
// symbols plus one FX pair). The clock is injected so tests can advance
// time deterministically.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache using the wall clock.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return NewCacheWithClock[V](ttl, time.Now)
}

// NewCacheWithClock creates a cache with an injected clock.
func NewCacheWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key, or false if the key is absent
// or its entry has outlived the TTL. Stale entries are dropped on read.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.data, true
}

// Set stores data under key, unconditionally replacing any previous
// entry and restarting its TTL.
func (c *Cache[V]) Set(key string, data V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{
		data:      data,
		timestamp: c.now(),
	}
}

// Clear drops all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry[V])
}
