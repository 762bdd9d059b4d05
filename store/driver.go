package store

import (
	"context"
	"database/sql"
	"time"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
// List methods return rows ordered by (timestamp, id) ascending.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// MoodRecord model related methods.
	CreateMoodRecord(ctx context.Context, create *MoodRecord) (*MoodRecord, error)
	ListMoodRecords(ctx context.Context, find *FindMoodRecord) ([]*MoodRecord, error)

	// HabitEvent model related methods.
	CreateHabitEvent(ctx context.Context, create *HabitEvent) (*HabitEvent, error)
	ListHabitEvents(ctx context.Context, find *FindHabitEvent) ([]*HabitEvent, error)

	// ListActiveUserIDs returns distinct users with records after cutoff.
	ListActiveUserIDs(ctx context.Context, cutoff time.Time) ([]int32, error)

	// InsightSummary model related methods.
	UpsertInsightSummary(ctx context.Context, upsert *InsightSummary) (*InsightSummary, error)
	ListInsightSummaries(ctx context.Context, find *FindInsightSummary) ([]*InsightSummary, error)

	// SystemSetting model related methods.
	GetSystemSetting(ctx context.Context, name string) (string, error)
	UpsertSystemSetting(ctx context.Context, name, value string) error
}
