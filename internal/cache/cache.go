// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides the bounded LRU cache the native device keeps its
// bind groups in.
//
// Entries own GPU objects, so every removal (eviction, Remove, RemoveFunc,
// Clear) goes through the eviction callback, which releases them.
//
//	c := cache.New[key, *group](16, func(k key, g *group) { g.destroy() })
//	g, ok := c.Get(k)
//
// Cache is not safe for concurrent use.
package cache

// Cache is an LRU cache with an eviction callback.
type Cache[K comparable, V any] struct {
	entries map[K]*entry[V]
	limit   int
	tick    int64 // monotonic access counter
	onEvict func(K, V)
}

type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache holding at most limit entries. A limit of 0 means
// unlimited. onEvict may be nil.
func New[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// Set stores value under key. A previous value for key is evicted. If the
// cache is full, the least recently used entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	if old, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.evict(key, old.value)
	}
	if c.limit > 0 && len(c.entries) >= c.limit {
		c.evictOldest()
	}
	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}
}

// Remove evicts key. It reports whether key was present.
func (c *Cache[K, V]) Remove(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.evict(key, e.value)
	return true
}

// RemoveFunc evicts every entry whose key matches and returns how many
// were removed.
func (c *Cache[K, V]) RemoveFunc(match func(K) bool) int {
	n := 0
	for k, e := range c.entries {
		if !match(k) {
			continue
		}
		delete(c.entries, k)
		c.evict(k, e.value)
		n++
	}
	return n
}

// Clear evicts every entry.
func (c *Cache[K, V]) Clear() {
	c.RemoveFunc(func(K) bool { return true })
	c.tick = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Limit returns the maximum number of entries, 0 for unlimited.
func (c *Cache[K, V]) Limit() int { return c.limit }

// evictOldest removes the least recently used entry.
func (c *Cache[K, V]) evictOldest() {
	var (
		oldest K
		atime  int64 = -1
	)
	for k, e := range c.entries {
		if atime < 0 || e.atime < atime {
			oldest, atime = k, e.atime
		}
	}
	if atime < 0 {
		return
	}
	e := c.entries[oldest]
	delete(c.entries, oldest)
	c.evict(oldest, e.value)
}

func (c *Cache[K, V]) evict(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
