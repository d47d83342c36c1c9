package injector

import (
	"sync"
)

// Cache stores introspection results keyed by name.
// The injector only reads and writes through this interface; any store that
// satisfies it can be supplied with WithCache.
type Cache interface {
	// Fetch returns the data stored under key.
	Fetch(key string) (any, bool)

	// Store records data under key, replacing any previous value.
	Store(key string, data any)
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = NopCache{}
)

// MemoryCache is a thread-safe in-process Cache.
type MemoryCache struct {
	entries map[string]any
	mu      sync.RWMutex
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]any),
	}
}

// Fetch retrieves an entry from the cache.
func (c *MemoryCache) Fetch(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	return data, ok
}

// Store records an entry in the cache.
func (c *MemoryCache) Store(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// NopCache never retains anything. Every lookup misses.
type NopCache struct{}

func (NopCache) Fetch(string) (any, bool) { return nil, false }
func (NopCache) Store(string, any)        {}

// Cache key prefixes.
const (
	ctorKeyPrefix    = "ctor:"
	funcKeyPrefix    = "func:"
	methodKeyPrefix  = "method:"
	closureKeyPrefix = "closure:"
)
