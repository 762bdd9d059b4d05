package store

import (
	"context"
	"time"
)

// MoodRecord is a single mood rating on a 1..10 scale.
type MoodRecord struct {
	ID        int64
	UserID    int32
	Timestamp time.Time
	Level     int
	Note      string
	CreatedTs int64
}

// FindMoodRecord specifies the conditions for finding mood records.
// Since is inclusive and Until is exclusive.
type FindMoodRecord struct {
	UserID *int32
	Since  *time.Time
	Until  *time.Time
	Limit  int
}

func (s *Store) CreateMoodRecord(ctx context.Context, create *MoodRecord) (*MoodRecord, error) {
	return s.driver.CreateMoodRecord(ctx, create)
}

func (s *Store) ListMoodRecords(ctx context.Context, find *FindMoodRecord) ([]*MoodRecord, error) {
	return s.driver.ListMoodRecords(ctx, find)
}

// GetMoodRecords returns the user's mood records in [since, until), ordered by timestamp.
func (s *Store) GetMoodRecords(ctx context.Context, userID int32, since, until time.Time) ([]*MoodRecord, error) {
	return s.driver.ListMoodRecords(ctx, &FindMoodRecord{
		UserID: &userID,
		Since:  &since,
		Until:  &until,
	})
}
