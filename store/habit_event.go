package store

import (
	"context"
	"time"
)

// HabitEvent records whether a habit was completed at a point in time.
type HabitEvent struct {
	ID        int64
	UserID    int32
	Timestamp time.Time
	HabitID   string
	Completed bool
	CreatedTs int64
}

// FindHabitEvent specifies the conditions for finding habit events.
// Since is inclusive and Until is exclusive.
type FindHabitEvent struct {
	UserID  *int32
	HabitID *string
	Since   *time.Time
	Until   *time.Time
	Limit   int
}

func (s *Store) CreateHabitEvent(ctx context.Context, create *HabitEvent) (*HabitEvent, error) {
	return s.driver.CreateHabitEvent(ctx, create)
}

func (s *Store) ListHabitEvents(ctx context.Context, find *FindHabitEvent) ([]*HabitEvent, error) {
	return s.driver.ListHabitEvents(ctx, find)
}

// GetHabitEvents returns the user's habit events in [since, until), ordered by timestamp.
func (s *Store) GetHabitEvents(ctx context.Context, userID int32, since, until time.Time) ([]*HabitEvent, error) {
	return s.driver.ListHabitEvents(ctx, &FindHabitEvent{
		UserID: &userID,
		Since:  &since,
		Until:  &until,
	})
}

// ListActiveUserIDs returns users with any mood or habit activity after cutoff.
func (s *Store) ListActiveUserIDs(ctx context.Context, cutoff time.Time) ([]int32, error) {
	return s.driver.ListActiveUserIDs(ctx, cutoff)
}
