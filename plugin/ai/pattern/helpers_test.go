package pattern

import (
	"time"
)

// monday is 2025-03-03, a Monday.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(dayOffset, hour int) time.Time {
	return monday.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
}

func mood(ts time.Time, level int) MoodRecord {
	return MoodRecord{Timestamp: ts, Level: level}
}

func completed(ts time.Time, habitID string) HabitEvent {
	return HabitEvent{Timestamp: ts, HabitID: habitID, Completed: true}
}

// weeklyFridayDip builds one 10:00 reading per day: 3 on Fridays, 8 otherwise.
func weeklyFridayDip(weeks int) []MoodRecord {
	var moods []MoodRecord
	for d := 0; d < weeks*7; d++ {
		ts := at(d, 10)
		level := 8
		if ts.Weekday() == time.Friday {
			level = 3
		}
		moods = append(moods, mood(ts, level))
	}
	return moods
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultAnalysisConfig(), nil)
}
