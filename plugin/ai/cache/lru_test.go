package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLRU_GetSet(t *testing.T) {
	clock := newFakeClock()
	lru := NewLRU[string](10, time.Minute, clock.Now)

	_, ok := lru.Get("missing")
	assert.False(t, ok)

	lru.Set("a", "one", 0)
	v, ok := lru.Get("a")
	require.True(t, ok)
	assert.Equal(t, "one", v)

	lru.Set("a", "two", 0)
	v, _ = lru.Get("a")
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, lru.Len())
}

func TestLRU_TTL(t *testing.T) {
	clock := newFakeClock()
	lru := NewLRU[int](10, time.Minute, clock.Now)

	lru.Set("default", 1, 0)
	lru.Set("short", 2, 10*time.Second)
	lru.Set("forever", 3, -1)

	clock.Advance(10*time.Second - time.Nanosecond)
	_, ok := lru.Get("short")
	assert.True(t, ok, "entry is fresh until its ttl has fully elapsed")

	clock.Advance(time.Nanosecond)
	_, ok = lru.Get("short")
	assert.False(t, ok, "entry expires once now-stored equals ttl")

	clock.Advance(time.Minute)
	_, ok = lru.Get("default")
	assert.False(t, ok)
	_, ok = lru.Get("forever")
	assert.True(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	lru := NewLRU[int](2, time.Minute, nil)

	lru.Set("a", 1, 0)
	lru.Set("b", 2, 0)
	_, _ = lru.Get("a")
	lru.Set("c", 3, 0)

	_, ok := lru.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = lru.Get("a")
	assert.True(t, ok)
	_, ok = lru.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, lru.Len())
}

func TestLRU_Invalidate(t *testing.T) {
	lru := NewLRU[int](10, time.Minute, nil)
	lru.Set("1:cycle", 1, 0)
	lru.Set("1:recommendations:5", 2, 0)
	lru.Set("1:recommendations:7", 3, 0)
	lru.Set("12:recommendations:5", 4, 0)

	assert.Equal(t, 2, lru.Invalidate("1:recommendations*"))
	assert.Equal(t, 1, lru.Invalidate("1:cycle"))
	assert.Equal(t, 0, lru.Invalidate("1:cycle"))

	_, ok := lru.Get("12:recommendations:5")
	assert.True(t, ok, "other users keep their entries")
}

func TestLRU_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	lru := NewLRU[int](10, time.Minute, clock.Now)
	lru.Set("a", 1, 0)
	lru.Set("b", 2, 2*time.Minute)

	clock.Advance(90 * time.Second)
	assert.Equal(t, 1, lru.CleanupExpired())
	assert.Equal(t, 1, lru.Len())
}
