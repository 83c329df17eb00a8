package utils

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache is a never-evicting map with at-most-once creation per key.
// Concurrent requests for a missing key share one creation; requests for
// different keys never wait on each other's creation.
type Cache[K ~string, V any] struct {
	items map[K]V
	mutex sync.RWMutex
	group singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	creates atomic.Int64
}

// NewCache creates a new generic cache
func NewCache[K ~string, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	v, ok := c.items[key]
	return v, ok
}

// GetOrCreate returns the cached value for key, calling create at most
// once across concurrent callers when it is missing. Failures are not
// stored, so a later call retries. created is true only for the caller
// whose flight ran create.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (v V, created bool, err error) {
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, false, nil
	}
	c.misses.Add(1)

	ran := false
	result, err, _ := c.group.Do(string(key), func() (interface{}, error) {
		// A flight that finished between our miss and Do already stored it.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		ran = true
		c.creates.Add(1)

		v, err := create()
		if err != nil {
			return nil, err
		}
		c.mutex.Lock()
		c.items[key] = v
		c.mutex.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return result.(V), ran, nil
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = value
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// Keys returns all keys in the cache
func (c *Cache[K, V]) Keys() []K {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]K, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}

	return keys
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	return CacheStats{
		Size:    c.Size(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Creates: c.creates.Load(),
	}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size    int
	Hits    int64
	Misses  int64
	Creates int64
}
