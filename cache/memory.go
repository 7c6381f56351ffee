package cache

import (
	"strings"
	"sync"
	"time"
)

// cacheEntry holds a cached namespace with its capture time.
type cacheEntry struct {
	value     map[string]any
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with lazy TTL expiry.
//
// Expired entries are reported as absent but stay in the map until they are
// overwritten or removed. There is no eviction beyond TTL, so the map grows
// with the number of distinct keys ever stored.
type InMemoryCache struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttl is 0 or negative, entries never expire.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the time source, mainly for tests.
func (c *InMemoryCache) WithClock(now func() time.Time) *InMemoryCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns a copy of the cached namespace.
// An entry whose age reached the TTL is treated as absent.
func (c *InMemoryCache) Get(key string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}

	if c.expired(entry) {
		return nil, false
	}

	return cloneMap(entry.value), true
}

// Set stores a copy of value; later changes to value do not reach the cache.
func (c *InMemoryCache) Set(key string, value map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		value:     cloneMap(value),
		timestamp: c.now(),
	}
	return nil
}

// Delete removes a single entry.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *InMemoryCache) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
		}
	}
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// Keys returns the keys of all non-expired entries.
func (c *InMemoryCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.cache))
	for key, entry := range c.cache {
		if c.expired(entry) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// expired must be called with the lock held.
func (c *InMemoryCache) expired(entry cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(entry.timestamp) >= c.ttl
}

// cloneMap deep-copies nested maps and slices. Leaves are shared.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

var _ Store = (*InMemoryCache)(nil)
