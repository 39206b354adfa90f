// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package cache provides a bounded in-memory cache with TTL expiry and
// least-recently-used eviction, used to memoise API responses.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Defaults applied by New for non-positive arguments.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 10000
	cleanupInterval   = time.Minute
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	TotalKeys   int64     `json:"total_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// Cache is a thread-safe TTL cache holding at most a fixed number of
// entries. When full, the least recently used entry is evicted.
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]*entry[V]
	head     entry[V] // head.next is the most recently used
	tail     entry[V] // tail.prev is the least recently used
	ttl      time.Duration
	capacity int
	stats    Stats
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its background cleanup. Call Close to stop it.
//
// Example:
//
//	c := cache.New[*recommend.Response](5*time.Minute, 10000)
//	defer c.Close()
//	c.Set(cache.GenerateKey("recommend", req), resp)
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	c := newCache[V](ttl, maxEntries, time.Now)
	go c.cleanupLoop()
	return c
}

func newCache[V any](ttl time.Duration, maxEntries int, now func() time.Time) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache[V]{
		items:    make(map[string]*entry[V]),
		ttl:      ttl,
		capacity: maxEntries,
		now:      now,
		stop:     make(chan struct{}),
	}
	c.stats.LastCleanup = now()
	c.head.next = &c.tail
	c.tail.prev = &c.head
	return c
}

// Get returns the value stored under key if present and not expired.
// Expired entries are removed and counted as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.remove(e)
		c.stats.Misses++
		c.stats.Evictions++
		return zero, false
	}
	c.moveToFront(e)
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.items[key] = e
	c.pushFront(e)
	for len(c.items) > c.capacity {
		c.remove(c.tail.prev)
		c.stats.Evictions++
	}
	c.stats.TotalKeys = int64(len(c.items))
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.remove(e)
		c.stats.Evictions++
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Evictions += int64(len(c.items))
	c.items = make(map[string]*entry[V])
	c.head.next = &c.tail
	c.tail.prev = &c.head
	c.stats.TotalKeys = 0
}

// Len returns the number of stored entries, including expired ones not yet cleaned up.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the hit rate as a percentage.
func (c *Cache[V]) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Close stops the background cleanup. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for e := c.tail.prev; e != &c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.remove(e)
			c.stats.Evictions++
		}
		e = prev
	}
	c.stats.LastCleanup = now
}

func (c *Cache[V]) pushFront(e *entry[V]) {
	e.prev = &c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}

func (c *Cache[V]) remove(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
	delete(c.items, e.key)
	c.stats.TotalKeys = int64(len(c.items))
}

// GenerateKey creates a cache key from a method name and its parameters.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
