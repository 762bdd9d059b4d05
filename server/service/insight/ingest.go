package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/store"
)

// ErrInvalidHabitID is returned when a habit event has an empty habit id.
var ErrInvalidHabitID = errors.New("habit id must not be empty")

// RecordWriter persists new records.
type RecordWriter interface {
	CreateMoodRecord(ctx context.Context, create *store.MoodRecord) (*store.MoodRecord, error)
	CreateHabitEvent(ctx context.Context, create *store.HabitEvent) (*store.HabitEvent, error)
}

// Ingestor writes new records and invalidates the user's cached insights.
type Ingestor struct {
	writer  RecordWriter
	service *Service
}

// NewIngestor creates an ingestor that invalidates svc's cache after each write.
func NewIngestor(writer RecordWriter, svc *Service) *Ingestor {
	return &Ingestor{writer: writer, service: svc}
}

// RecordMood stores a mood rating. A zero timestamp means now.
func (i *Ingestor) RecordMood(ctx context.Context, userID int32, ts time.Time, level int, note string) (*store.MoodRecord, error) {
	if level < 1 || level > 10 {
		return nil, fmt.Errorf("level %d: %w", level, pattern.ErrInvalidMoodLevel)
	}
	if ts.IsZero() {
		ts = i.service.now()
	}

	record, err := i.writer.CreateMoodRecord(ctx, &store.MoodRecord{
		UserID:    userID,
		Timestamp: ts,
		Level:     level,
		Note:      strings.TrimSpace(note),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mood record: %w", err)
	}

	i.service.InvalidateUserCache(userID)
	slog.Info("recorded mood", "user_id", userID, "level", level)
	return record, nil
}

// RecordHabit stores a habit event. A zero timestamp means now.
func (i *Ingestor) RecordHabit(ctx context.Context, userID int32, ts time.Time, habitID string, completed bool) (*store.HabitEvent, error) {
	habitID = strings.TrimSpace(habitID)
	if habitID == "" {
		return nil, ErrInvalidHabitID
	}
	if ts.IsZero() {
		ts = i.service.now()
	}

	event, err := i.writer.CreateHabitEvent(ctx, &store.HabitEvent{
		UserID:    userID,
		Timestamp: ts,
		HabitID:   habitID,
		Completed: completed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create habit event: %w", err)
	}

	i.service.InvalidateUserCache(userID)
	slog.Info("recorded habit", "user_id", userID, "habit_id", habitID, "completed", completed)
	return event, nil
}
