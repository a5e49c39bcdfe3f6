// Package marketdata fronts the quote provider with a cache that doubles as a
// last-known-good store, so a slow or failing upstream degrades to stale data
// instead of an error.
package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry is one cached provider response.
type Entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"storedAt"`
}

// Cache stores entries by key. Implementations never expire entries on their
// own schedule shorter than the fallback horizon; freshness is decided by the
// Gateway from StoredAt.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
}

// MemoryCache is an in-process Cache. A refresh overwrites the previous entry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

// Get returns the entry stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(_ context.Context, key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Len returns the number of cached keys.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
