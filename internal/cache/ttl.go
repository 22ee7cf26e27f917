// Package cache holds small in-memory caches with explicit staleness.
package cache

import (
	"sync"
	"time"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
)

// Entry is a cached value together with the time it was fetched
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// IsStale reports whether an entry fetched at fetchedAt is older than ttl at now.
// A non-positive ttl makes every entry stale.
func IsStale(fetchedAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(fetchedAt) >= ttl
}

// TTL is a concurrency safe map whose entries expire after a fixed duration
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   adapter.Clock
	entries map[K]Entry[V]
}

// NewTTL creates a cache whose entries expire after ttl
func NewTTL[K comparable, V any](ttl time.Duration, clock adapter.Clock) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[K]Entry[V]),
	}
}

// Get returns the cached value when present and fresh
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || IsStale(entry.FetchedAt, c.ttl, c.clock.Now()) {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key, stamped with the current time
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: value, FetchedAt: c.clock.Now()}
	c.mu.Unlock()
}

// Purge drops every stale entry and returns how many were removed
func (c *TTL[K, V]) Purge() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if IsStale(e.FetchedAt, c.ttl, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, stale ones included
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
