package gwa

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/wind-yield/internal/domain"
	"github.com/couchcryptid/wind-yield/internal/observability"
)

// CachedSource wraps a GridSource with an in-memory LRU cache keyed by
// coordinates rounded to four decimals (about 10 m).
type CachedSource struct {
	inner   domain.GridSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a grid source.
func NewCachedSource(inner domain.GridSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Grid(ctx context.Context, lat, lon float64) (*domain.ClimateGrid, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if grid, ok := c.cache.get(key); ok {
		c.metrics.GridCache.WithLabelValues("hit").Inc()
		return grid, nil
	}
	c.metrics.GridCache.WithLabelValues("miss").Inc()
	grid, err := c.inner.Grid(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	// Grids are immutable, so one instance is shared by every caller.
	c.cache.put(key, grid)
	return grid, nil
}

// lruCache is a simple thread-safe LRU cache of climate grids.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *domain.ClimateGrid
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: max(1, maxEntries),
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*domain.ClimateGrid, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *domain.ClimateGrid) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
