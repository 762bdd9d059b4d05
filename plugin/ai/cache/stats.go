package cache

import "time"

// KindStats counts cache activity for one kind.
type KindStats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Invalidations int64 `json:"invalidations"`
	Computations  int64 `json:"computations"`
	Errors        int64 `json:"errors"`
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s KindStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the per-kind counters.
func (c *AnalysisCache) Stats() map[Kind]KindStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[Kind]KindStats, len(c.stats))
	for kind, s := range c.stats {
		out[kind] = *s
	}
	return out
}

func (c *AnalysisCache) hit(kind Kind) {
	c.mu.Lock()
	c.stats[kind].Hits++
	c.mu.Unlock()
	c.recorder.RecordHit(kind)
}

func (c *AnalysisCache) miss(kind Kind) {
	c.mu.Lock()
	c.stats[kind].Misses++
	c.mu.Unlock()
	c.recorder.RecordMiss(kind)
}

func (c *AnalysisCache) computed(kind Kind, d time.Duration, err error) {
	c.mu.Lock()
	c.stats[kind].Computations++
	if err != nil {
		c.stats[kind].Errors++
	}
	c.mu.Unlock()
	c.recorder.RecordComputation(kind, d, err)
}
