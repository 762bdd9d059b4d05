package metrics

import (
	"sort"
	"sync"
	"time"
)

// Aggregator keeps hourly computation latencies per analysis kind in memory.
type Aggregator struct {
	mu  sync.RWMutex
	now func() time.Time

	// key = "hourBucket|kind"
	buckets map[string]*kindBucket
}

type kindBucket struct {
	hourBucket time.Time
	kind       string
	count      int64
	errorCount int64
	latencies  []int64 // in microseconds
}

// KindLatency summarizes computations of one kind.
type KindLatency struct {
	Kind       string        `json:"kind"`
	Count      int64         `json:"count"`
	ErrorCount int64         `json:"error_count"`
	LatencyP50 time.Duration `json:"latency_p50"`
	LatencyP95 time.Duration `json:"latency_p95"`
}

// NewAggregator creates an aggregator. A nil clock uses time.Now.
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		now:     now,
		buckets: make(map[string]*kindBucket),
	}
}

// Record adds one computation of kind.
func (a *Aggregator) Record(kind string, latency time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(a.now())
	key := makeKey(hourBucket, kind)

	bucket, exists := a.buckets[key]
	if !exists {
		bucket = &kindBucket{
			hourBucket: hourBucket,
			kind:       kind,
			latencies:  make([]int64, 0, 64),
		}
		a.buckets[key] = bucket
	}

	bucket.count++
	if !success {
		bucket.errorCount++
	}
	bucket.latencies = append(bucket.latencies, latency.Microseconds())
}

// Summary returns per-kind stats over buckets starting at or after since,
// ordered by kind.
func (a *Aggregator) Summary(since time.Time) []KindLatency {
	a.mu.RLock()
	defer a.mu.RUnlock()

	since = truncateToHour(since)
	byKind := make(map[string]*KindLatency)
	latencies := make(map[string][]int64)
	for _, bucket := range a.buckets {
		if bucket.hourBucket.Before(since) {
			continue
		}
		stat, ok := byKind[bucket.kind]
		if !ok {
			stat = &KindLatency{Kind: bucket.kind}
			byKind[bucket.kind] = stat
		}
		stat.Count += bucket.count
		stat.ErrorCount += bucket.errorCount
		latencies[bucket.kind] = append(latencies[bucket.kind], bucket.latencies...)
	}

	out := make([]KindLatency, 0, len(byKind))
	for kind, stat := range byKind {
		stat.LatencyP50 = time.Duration(percentile(latencies[kind], 50)) * time.Microsecond
		stat.LatencyP95 = time.Duration(percentile(latencies[kind], 95)) * time.Microsecond
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Prune drops buckets older than before and returns how many were dropped.
func (a *Aggregator) Prune(before time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	before = truncateToHour(before)
	removed := 0
	for key, bucket := range a.buckets {
		if bucket.hourBucket.Before(before) {
			delete(a.buckets, key)
			removed++
		}
	}
	return removed
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func makeKey(hourBucket time.Time, kind string) string {
	return hourBucket.Format(time.RFC3339) + "|" + kind
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
