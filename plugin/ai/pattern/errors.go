package pattern

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMoodLevel is returned when a mood record falls outside [1, 10].
var ErrInvalidMoodLevel = errors.New("mood level out of range [1, 10]")

// DataOrderingError reports records that are not ordered by timestamp.
// It indicates a bug in the record source and is never retried.
type DataOrderingError struct {
	Kind  string // "mood" or "habit"
	Index int
	Prev  time.Time
	Curr  time.Time
}

func (e *DataOrderingError) Error() string {
	return fmt.Sprintf("%s records out of order at index %d: %s precedes %s",
		e.Kind, e.Index, e.Curr.Format(time.RFC3339), e.Prev.Format(time.RFC3339))
}

// checkOrdering scans the records once and fails on the first decreasing timestamp.
func checkOrdering(moods []MoodRecord, habits []HabitEvent) error {
	for i := 1; i < len(moods); i++ {
		if moods[i].Timestamp.Before(moods[i-1].Timestamp) {
			return &DataOrderingError{Kind: "mood", Index: i, Prev: moods[i-1].Timestamp, Curr: moods[i].Timestamp}
		}
	}
	for i := 1; i < len(habits); i++ {
		if habits[i].Timestamp.Before(habits[i-1].Timestamp) {
			return &DataOrderingError{Kind: "habit", Index: i, Prev: habits[i-1].Timestamp, Curr: habits[i].Timestamp}
		}
	}
	for i, m := range moods {
		if m.Level < 1 || m.Level > 10 {
			return fmt.Errorf("%w: record %d has level %d", ErrInvalidMoodLevel, i, m.Level)
		}
	}
	return nil
}
