package resolver

import (
	"sync"

	"github.com/Aleph-Alpha/outbox-router/v1/schema"
)

// Cache maps subjects to parsed schema definitions for the lifetime of the
// process. Entries are never evicted or replaced; only Clear empties it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*schema.Definition
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*schema.Definition)}
}

// Get returns the definition stored for subject.
func (c *Cache) Get(subject string) (*schema.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.entries[subject]
	return def, ok
}

// Store inserts def unless the subject is already cached, and returns the
// definition that is cached afterwards. Storing nil is a no-op.
func (c *Cache) Store(subject string, def *schema.Definition) *schema.Definition {
	if def == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[subject]; ok {
		return existing
	}
	c.entries[subject] = def
	return def
}

// Len returns the number of cached subjects.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*schema.Definition)
}
