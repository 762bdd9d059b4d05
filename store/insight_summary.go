package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// InsightSummary is a persisted snapshot of a derived analysis, one per user and kind.
type InsightSummary struct {
	ID         int64
	UID        string
	UserID     int32
	Kind       string
	Payload    string // JSON
	ComputedAt time.Time
}

// FindInsightSummary specifies the conditions for finding insight summaries.
type FindInsightSummary struct {
	UserID *int32
	Kind   *string
}

// UpsertInsightSummary stores the latest summary for (user, kind), replacing any previous one.
func (s *Store) UpsertInsightSummary(ctx context.Context, upsert *InsightSummary) (*InsightSummary, error) {
	if upsert.UID == "" {
		upsert.UID = shortuuid.New()
	}
	if upsert.ComputedAt.IsZero() {
		upsert.ComputedAt = time.Now()
	}
	return s.driver.UpsertInsightSummary(ctx, upsert)
}

func (s *Store) ListInsightSummaries(ctx context.Context, find *FindInsightSummary) ([]*InsightSummary, error) {
	return s.driver.ListInsightSummaries(ctx, find)
}
