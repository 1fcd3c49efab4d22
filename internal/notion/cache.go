package notion

import (
	"strings"
	"sync"
)

// Cache holds successful API responses for the duration of an import run.
// It is safe for concurrent use; for an identical key the last writer wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// CacheKey builds the key of a request.
func CacheKey(apiKey, method, endpoint string, body []byte) string {
	return strings.Join([]string{apiKey, method, endpoint, string(body)}, "\x00")
}

// Get returns the cached response for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]

	return v, ok
}

// Put stores a response.
func (c *Cache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
}

// Clear drops every entry. It is called at the start of each top-level import.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
