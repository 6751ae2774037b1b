// Package ttlcache keeps a bounded set of recent keys, each expiring after a
// fixed ttl. The worker uses it to skip already indexed articles and the API
// uses it as its session table.
package ttlcache

import (
	"sync"
	"time"
)

type entry struct {
	key string
	ts  time.Time
}

type item[V any] struct {
	value V
	ts    time.Time
}

// Cache maps keys to values for at most ttl; once capacity is exceeded the
// oldest insertions are evicted first.
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]item[V]
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// New creates a cache with the provided capacity and ttl.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache[V]{
		items:    make(map[string]item[V], capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewSet is a cache that only tracks key presence.
func NewSet(capacity int, ttl time.Duration) *Cache[struct{}] {
	return New[struct{}](capacity, ttl)
}

// Get returns the value stored under key if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok && now.Sub(it.ts) <= c.ttl {
		return it.value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present and not expired. It does not
// refresh the key.
func (c *Cache[V]) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Put stores value under key, restarting its ttl.
func (c *Cache[V]) Put(key string, value V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[V]{value: value, ts: now}
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

// Add records key in a presence-only cache.
func (c *Cache[V]) Add(key string) {
	var zero V
	c.Put(key, zero)
}

// Remove forgets key.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of live keys.
func (c *Cache[V]) Len() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.compact(now)
	n := 0
	for _, it := range c.items {
		if now.Sub(it.ts) <= c.ttl {
			n++
		}
	}
	return n
}

func (c *Cache[V]) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A newer Put for the same key owns the entry now.
		if it, ok := c.items[oldest.key]; ok && it.ts.Equal(oldest.ts) {
			delete(c.items, oldest.key)
		}
	}
}
