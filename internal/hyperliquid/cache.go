package hyperliquid

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// cacheEntry holds one cached upstream response. Entries are never swept;
// staleness is evaluated lazily at read time and entries are overwritten on
// the next successful fetch.
type cacheEntry struct {
	payload  json.RawMessage
	storedAt time.Time
	ttl      time.Duration
}

// responseCache is the in-memory response cache, keyed by endpoint plus
// serialized request body.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newResponseCache() *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached payload for key if it is still fresh at now.
func (c *responseCache) Get(key string, now time.Time) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.storedAt) >= entry.ttl {
		return nil, false
	}
	return entry.payload, true
}

// GetStale returns the cached payload for key regardless of age. Used on
// the 429 and transport-failure fallback paths.
func (c *responseCache) GetStale(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.payload, true
}

// Set stores or overwrites the entry for key.
func (c *responseCache) Set(key string, payload json.RawMessage, now time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		payload:  payload,
		storedAt: now,
		ttl:      ttl,
	}
}

// Evict removes every entry whose key contains match. An empty match clears
// the whole cache.
func (c *responseCache) Evict(match string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if match == "" {
		n := len(c.entries)
		c.entries = make(map[string]cacheEntry)
		return n
	}

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, match) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *responseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
