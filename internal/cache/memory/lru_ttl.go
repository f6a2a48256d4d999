// Package memory holds the in-process caches shared by the query client
// and the blob mirror.
package memory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// NoExpiry keeps entries until the LRU bounds evict them.
const NoExpiry time.Duration = -1

type item[V any] struct {
	value     V
	expiresAt time.Time
	size      int
}

// LRUTTL is a threadsafe LRU cache bounded by entry count and, optionally,
// by the summed size callers report for each value. Entries expire after
// the cache TTL unless stored with their own TTL through SetTTL. A TTL of
// NoExpiry disables expiry.
type LRUTTL[K comparable, V any] struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[K, item[V]]
	maxBytes   int
	totalBytes int
	ttl        time.Duration
	now        func() time.Time
}

func NewLRUTTL[K comparable, V any](maxEntries int, maxBytes int, ttl time.Duration) *LRUTTL[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	c := &LRUTTL[K, V]{maxBytes: maxBytes, ttl: ttl, now: time.Now}
	// NewLRU only fails for a non-positive size.
	c.lru, _ = simplelru.NewLRU[K, item[V]](maxEntries, func(_ K, it item[V]) {
		c.totalBytes -= it.size
	})
	return c
}

func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return it.value, true
}

func (c *LRUTTL[K, V]) Set(key K, value V, sizeBytes int) {
	c.SetTTL(key, value, sizeBytes, 0)
}

// SetTTL stores value with its own time to live. A zero ttl uses the
// cache default.
func (c *LRUTTL[K, V]) SetTTL(key K, value V, sizeBytes int, ttl time.Duration) {
	if c == nil {
		return
	}
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.lru.Peek(key); ok {
		c.totalBytes -= old.size
	}
	c.lru.Add(key, item[V]{value: value, size: sizeBytes, expiresAt: expiresAt})
	c.totalBytes += sizeBytes
	for c.maxBytes > 0 && c.totalBytes > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// DeleteFunc removes every entry whose key matches and reports how many
// were removed.
func (c *LRUTTL[K, V]) DeleteFunc(match func(K) bool) int {
	if c == nil || match == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range c.lru.Keys() {
		if match(key) && c.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

func (c *LRUTTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *LRUTTL[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.totalBytes = 0
}
