// Package cache holds per-user analysis results with TTL expiry, LRU eviction
// and at-most-one concurrent computation per key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrComputePanicked wraps a panic raised by a compute function.
var ErrComputePanicked = errors.New("analysis computation panicked")

// Config configures the analysis cache.
type Config struct {
	// TTLs per kind; kinds without an entry use DefaultTTL.
	TTLs            map[Kind]time.Duration
	Clock           func() time.Time
	DefaultTTL      time.Duration
	MaxEntries      int           // per kind
	CleanupInterval time.Duration // zero disables the background sweep
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      20 * time.Minute,
		MaxEntries:      1000,
		CleanupInterval: time.Minute,
		TTLs: map[Kind]time.Duration{
			KindRecommendations: 3 * time.Minute,
		},
	}
}

// TTL returns the configured time-to-live for kind.
func (c Config) TTL(kind Kind) time.Duration {
	if ttl, ok := c.TTLs[kind]; ok && ttl > 0 {
		return ttl
	}
	return c.DefaultTTL
}

// Key identifies one cached result. Suffix distinguishes variants of the same
// kind, such as recommendations for different current moods.
type Key struct {
	Kind   Kind
	Suffix string
	UserID int32
}

func (k Key) String() string {
	if k.Suffix == "" {
		return fmt.Sprintf("%d:%s", k.UserID, k.Kind)
	}
	return fmt.Sprintf("%d:%s:%s", k.UserID, k.Kind, k.Suffix)
}

// ComputeFunc produces a value for a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// AnalysisCache caches analysis results per user and kind.
//
// Each user has a generation counter that Invalidate bumps. Computations carry the
// generation they started under; a result whose generation is stale on completion
// is returned to its waiters but never stored, so the first call after an
// invalidation always computes afresh.
type AnalysisCache struct {
	config   Config
	recorder Recorder
	group    singleflight.Group

	lrus map[Kind]*LRU[any]

	mu          sync.Mutex
	generations map[int32]uint64
	stats       map[Kind]*KindStats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an analysis cache. A nil recorder discards events.
func New(cfg Config, recorder Recorder) *AnalysisCache {
	defaults := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaults.DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaults.MaxEntries
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &AnalysisCache{
		config:      cfg,
		recorder:    recorder,
		lrus:        make(map[Kind]*LRU[any], len(Kinds)),
		generations: make(map[int32]uint64),
		stats:       make(map[Kind]*KindStats, len(Kinds)),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, kind := range Kinds {
		c.lrus[kind] = NewLRU[any](cfg.MaxEntries, cfg.TTL(kind), cfg.Clock)
		c.stats[kind] = &KindStats{}
	}

	if cfg.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop(cfg.CleanupInterval)
	}
	return c
}

// Close stops the background sweep.
func (c *AnalysisCache) Close() {
	c.cancel()
	c.wg.Wait()
}

// GetOrCompute returns the fresh cached value for key or runs compute once for
// all concurrent callers of the same key. compute runs detached from the
// caller's cancellation: a caller whose ctx ends gets ctx.Err() while the
// computation finishes for the others. Failed computations are not stored.
func (c *AnalysisCache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (any, error) {
	lru, ok := c.lrus[key.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown cache kind %q", key.Kind)
	}

	cacheKey := key.String()
	if v, ok := lru.Get(cacheKey); ok {
		c.hit(key.Kind)
		return v, nil
	}
	c.miss(key.Kind)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen := c.generation(key.UserID)
	flightKey := fmt.Sprintf("%d/%s", gen, cacheKey)
	detached := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flightKey, func() (any, error) {
		if v, ok := lru.Get(cacheKey); ok {
			return v, nil
		}

		start := c.config.Clock()
		v, err := runCompute(detached, compute)
		c.computed(key.Kind, c.config.Clock().Sub(start), err)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generations[key.UserID] == gen {
			lru.Set(cacheKey, v, c.config.TTL(key.Kind))
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runCompute converts a panic in compute into an error so that it reaches the
// waiting callers instead of crashing the singleflight goroutine.
func runCompute(ctx context.Context, compute ComputeFunc) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", ErrComputePanicked, r)
		}
	}()
	return compute(ctx)
}

// Get is the typed form of AnalysisCache.GetOrCompute.
func Get[T any](ctx context.Context, c *AnalysisCache, key Key, compute func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %s has type %T", key, v)
	}
	return typed, nil
}

// Invalidate drops the user's entries for kind and every kind derived from it.
// Computations in flight for the user are not stored when they complete.
func (c *AnalysisCache) Invalidate(userID int32, kind Kind) int {
	return c.invalidate(userID, dependents(kind))
}

// dependents returns kind followed by the kinds computed from it.
func dependents(kind Kind) []Kind {
	switch kind {
	case KindAggregation:
		return Kinds
	case KindCycle, KindCorrelation, KindResilience:
		return []Kind{kind, KindOverview, KindRecommendations}
	default:
		return []Kind{kind}
	}
}

// InvalidateUser drops every cached entry of the user.
func (c *AnalysisCache) InvalidateUser(userID int32) int {
	return c.invalidate(userID, Kinds)
}

func (c *AnalysisCache) invalidate(userID int32, kinds []Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[userID]++
	total := 0
	for _, kind := range kinds {
		lru, ok := c.lrus[kind]
		if !ok {
			continue
		}
		removed := lru.Invalidate(fmt.Sprintf("%d:%s*", userID, kind))
		c.stats[kind].Invalidations += int64(removed)
		c.recorder.RecordInvalidation(kind, removed)
		total += removed
	}
	return total
}

// Len returns the number of stored entries of kind.
func (c *AnalysisCache) Len(kind Kind) int {
	if lru, ok := c.lrus[kind]; ok {
		return lru.Len()
	}
	return 0
}

func (c *AnalysisCache) generation(userID int32) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func (c *AnalysisCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			for _, lru := range c.lrus {
				lru.CleanupExpired()
			}
		}
	}
}
