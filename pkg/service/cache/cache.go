package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the default lifetime of a cached entry.
const DefaultTTL = 45 * time.Second

// entry holds a cached value with expiration
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL keyed cache. Expired entries are evicted lazily on
// read and whenever a new value is stored.
type Cache[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[K]entry[V]
}

// Option is a functional option for cache configuration
type Option[K comparable, V any] func(*Cache[K, V])

// WithTTL sets the lifetime of cached entries.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.ttl = ttl
	}
}

// WithClock replaces the time source, mainly for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

// New creates a TTL cache
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[K]entry[V]),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached value for key. The second return value is
// false when the key is absent or its entry has expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !e.expiresAt.After(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the configured TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: now.Add(c.ttl),
	}
}

// Invalidate removes the entry for key if present.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}
