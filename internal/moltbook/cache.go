package moltbook

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value  any
	expiry time.Time
}

// TTLCache is a concurrency-safe map with per-entry expiry. Expired
// entries are evicted lazily on the next lookup.
type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	return newTTLCacheAt(ttl, time.Now)
}

func newTTLCacheAt(ttl time.Duration, now func() time.Time) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiry) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiry: c.now().Add(c.ttl)}
}
