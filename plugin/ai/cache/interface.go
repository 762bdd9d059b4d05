package cache

import "time"

// Kind names one class of cached analysis.
type Kind string

const (
	KindAggregation     Kind = "aggregation"
	KindCycle           Kind = "cycle"
	KindCorrelation     Kind = "correlation"
	KindResilience      Kind = "resilience"
	KindOverview        Kind = "overview"
	KindRecommendations Kind = "recommendations"
)

// Kinds lists every cached kind in invalidation order.
var Kinds = []Kind{
	KindAggregation,
	KindCycle,
	KindCorrelation,
	KindResilience,
	KindOverview,
	KindRecommendations,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Recorder receives cache events. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordHit(kind Kind)
	RecordMiss(kind Kind)
	RecordInvalidation(kind Kind, removed int)
	RecordComputation(kind Kind, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordHit(Kind) {}
func (noopRecorder) RecordMiss(Kind) {}
func (noopRecorder) RecordInvalidation(Kind, int) {}
func (noopRecorder) RecordComputation(Kind, time.Duration, error) {}
