package cache

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	timestamp time.Time
}

// MemoryCache is a process-local cache. With a zero TTL entries live for the
// lifetime of the process.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	ttl     time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.ttl > 0 && time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		timestamp: time.Now(),
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

var _ GlossCache = (*MemoryCache)(nil)
