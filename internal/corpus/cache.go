package corpus

import (
	"context"
	"sync"
)

// Cache is a session cache keyed by id. Entries are never evicted; the
// corpus bounds its size. Only successful loads are stored.
type Cache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{data: make(map[K]V)}
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores value unless key is already present, and returns the value
// that ends up cached. Racing writers for one key keep the first value.
func (c *Cache[K, V]) Set(key K, value V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[K]V)
	}
	if v, ok := c.data[key]; ok {
		return v
	}
	c.data[key] = value
	return value
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// A load error is returned as is and nothing is cached, so the next call
// retries. The lock is not held during load.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.Set(key, v), nil
}
