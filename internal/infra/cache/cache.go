// Package cache provides a typed in-memory TTL cache on top of
// patrickmn/go-cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	items *gocache.Cache
	ttl   time.Duration
}

// New creates a new in-memory cache with the given TTL. Expired entries are
// swept every ttl.
func New[T any](ttl time.Duration) *InMemory[T] {
	return &InMemory[T]{
		items: gocache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.items.Set(key, value, c.ttl)
}

// Touch resets the TTL of an existing entry. Returns false if the key is absent.
func (c *InMemory[T]) Touch(key string) bool {
	v, ok := c.items.Get(key)
	if !ok {
		return false
	}
	c.items.Set(key, v, c.ttl)
	return true
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.items.Delete(key)
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *InMemory[T]) Len() int {
	return c.items.ItemCount()
}

// OnEvicted registers fn to run after an entry is deleted or expires.
// fn runs outside the cache lock and may call back into the cache.
func (c *InMemory[T]) OnEvicted(fn func(key string, value T)) {
	c.items.OnEvicted(func(key string, v any) {
		if typed, ok := v.(T); ok {
			fn(key, typed)
		}
	})
}
