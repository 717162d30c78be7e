package cache

import (
	"strconv"
	"sync"
)

// RowCache maps the in-session key of a record to the primary key the database gave it, so
// later updates can address the row without a lookup query.
type RowCache struct {
	mu   sync.RWMutex
	rows map[string]uint
}

func NewRowCache() *RowCache {
	return &RowCache{
		rows: make(map[string]uint),
	}
}

// TeamKey is the row key of the team record with the given session serial.
func TeamKey(serial int) string {
	return "team:" + strconv.Itoa(serial)
}

// Get retrieves a row ID by key
func (c *RowCache) Get(key string) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.rows[key]
	return id, ok
}

// Set stores a row ID by key
func (c *RowCache) Set(key string, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = id
}

// Delete removes a row by key
func (c *RowCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, key)
}

// Reset clears all rows from the cache
func (c *RowCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = make(map[string]uint)
}
