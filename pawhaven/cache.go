package pawhaven

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a read-through memoization layer over remote reads. Concurrent
// reads of the same key collapse into one fetch. Mutating commands name
// the keys they invalidate; an invalidated key re-fetches on next read.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: map[string]any{}}
}

func (c *Cache) Get(key string, fetch func() (any, error)) (any, error) {
	c.mu.Lock()
	if value, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = value
		c.mu.Unlock()

		return value, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}
