package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRU is a thread-safe LRU cache with per-entry TTL.
// An entry stored at t with ttl d is fresh while now-t < d.
type LRU[V any] struct {
	items    map[string]*list.Element
	order    *list.List
	now      func() time.Time
	capacity int
	ttl      time.Duration
	mu       sync.Mutex
}

type entry[V any] struct {
	value      V
	expiration time.Time
	key        string
}

// NewLRU creates an LRU holding at most capacity entries.
// A nil clock uses time.Now.
func NewLRU[V any](capacity int, defaultTTL time.Duration, now func() time.Time) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if now == nil {
		now = time.Now
	}
	return &LRU[V]{
		capacity: capacity,
		ttl:      defaultTTL,
		now:      now,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key if it is present and fresh.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[V])
	if !e.expiration.IsZero() && !c.now().Before(e.expiration) {
		c.removeElement(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key. A ttl of zero uses the cache default;
// a negative ttl never expires.
func (c *LRU[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	var expiration time.Time
	if ttl > 0 {
		expiration = now.Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiration = expiration
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry[V]{
		key:        key,
		value:      value,
		expiration: expiration,
	})
	c.items[key] = elem
}

// Invalidate removes entries matching pattern and returns how many were removed.
// A trailing "*" matches by prefix; anything else is an exact key.
func (c *LRU[V]) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		removed := 0
		for key, elem := range c.items {
			if strings.HasPrefix(key, prefix) {
				c.removeElement(elem)
				removed++
			}
		}
		return removed
	}

	if elem, ok := c.items[pattern]; ok {
		c.removeElement(elem)
		return 1
	}
	return 0
}

// Len returns the number of stored entries, expired ones included.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, elem := range c.items {
		e := elem.Value.(*entry[V])
		if !e.expiration.IsZero() && !now.Before(e.expiration) {
			c.removeElement(elem)
			removed++
		}
	}
	return removed
}

func (c *LRU[V]) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.removeElement(elem)
	}
}

func (c *LRU[V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}
