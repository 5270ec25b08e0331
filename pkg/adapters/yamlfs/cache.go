package yamlfs

import (
	"sync"
	"time"
)

// Cache is an explicitly constructed definition cache with a TTL and
// source-modification-time invalidation. Loaders share one instance when
// given the same cache; tests instantiate isolated ones. Population is
// best-effort with no stampede protection, which is acceptable because
// definition reads are idempotent and cheap.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value    any
	modTime  time.Time
	loadedAt time.Time
}

// NewCache creates a cache with the given TTL. A zero TTL means entries only
// expire via modification-time changes.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *Cache) get(key string, modTime time.Time) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.loadedAt) > c.ttl {
		return nil, false
	}
	if !modTime.IsZero() && !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) put(key string, value any, modTime time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, modTime: modTime, loadedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
