// Package lru provides a generic thread-safe LRU cache with count and
// size based eviction.
package lru

import (
	"container/list"
	"sync"
	"sync/atomic"
)

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// Cache is a thread-safe generic LRU cache.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*list.Element
	order   *list.List // Front is most recently used.

	maxEntries int
	maxSize    int64
	curSize    int64
	sizeFunc   func(V) int64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxEntries sets the maximum number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxBytes bounds the total size of the cached values; sizeFunc
// reports the size of one value.
func WithMaxBytes[K comparable, V any](maxBytes int64, sizeFunc func(V) int64) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxSize = maxBytes
		c.sizeFunc = sizeFunc
	}
}

// New creates a cache. At least one capacity limit is required; New panics otherwise.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxEntries <= 0 && c.maxSize <= 0 {
		panic("lru: at least one capacity limit (WithMaxEntries or WithMaxBytes) is required")
	}

	return c
}

// Get returns the cached value for key and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(el)

	return el.Value.(*entry[K, V]).value, true
}

// Put inserts or replaces the value for key. Values larger than the whole
// cache are dropped.
func (c *Cache[K, V]) Put(key K, value V) {
	size := c.sizeOf(value)
	if c.maxSize > 0 && size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry[K, V])
		c.curSize += size - ent.size
		ent.value, ent.size = value, size
		c.order.MoveToFront(el)
		c.shrink(0, 0)

		return
	}

	c.shrink(1, size)

	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, size: size})
	c.curSize += size
}

// Remove drops key from the cache.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.drop(el)
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.order.Init()
	c.curSize = 0
}

// shrink evicts least recently used entries until entries more entries of
// bytes total size fit. The caller holds the lock.
func (c *Cache[K, V]) shrink(entries int, incoming int64) {
	for c.order.Len() > 0 {
		overCount := c.maxEntries > 0 && len(c.entries)+entries > c.maxEntries
		overSize := c.maxSize > 0 && c.curSize+incoming > c.maxSize

		if !overCount && !overSize {
			return
		}

		c.drop(c.order.Back())
		c.evictions.Add(1)
	}
}

func (c *Cache[K, V]) drop(el *list.Element) {
	ent := el.Value.(*entry[K, V])
	c.order.Remove(el)
	delete(c.entries, ent.key)
	c.curSize -= ent.size
}

func (c *Cache[K, V]) sizeOf(value V) int64 {
	if c.sizeFunc != nil {
		return c.sizeFunc(value)
	}

	return 1
}
