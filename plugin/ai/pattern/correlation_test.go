package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correlate(t *testing.T, a *Analyzer, moods []MoodRecord, habits []HabitEvent) []CorrelationFinding {
	t.Helper()
	agg, err := a.Aggregate(moods, habits)
	require.NoError(t, err)
	return a.Correlate(agg)
}

func TestCorrelateHabitLeadsMood(t *testing.T) {
	// Habit done on days 0-9. Each completion day is followed by a 9, each of the
	// ten non-completion days 10-19 is followed by a 4.
	var moods []MoodRecord
	var habits []HabitEvent
	for d := 0; d < 21; d++ {
		if d < 10 {
			habits = append(habits, completed(at(d, 7), "exercise"))
		}
		level := 4
		if d <= 10 {
			level = 9
		}
		moods = append(moods, mood(at(d, 20), level))
	}

	findings := correlate(t, newTestAnalyzer(), moods, habits)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "exercise", f.HabitID)
	assert.Equal(t, HintHabitLeadsMood, f.CausalHint)
	assert.Equal(t, 10, f.SampleCount)
	assert.Greater(t, f.CorrelationCoefficient, 0.85)
	assert.LessOrEqual(t, f.CorrelationCoefficient, 1.0)
	assert.InDelta(t, 9.0, f.MeanMoodWith, 1e-9)
	assert.InDelta(t, 5.0, f.NextDayLift, 1e-9)
}

func TestCorrelateCoincidental(t *testing.T) {
	// Mood alternates 9/4 by day; the habit falls on the good days, but the day
	// after a completion is always a bad one.
	var moods []MoodRecord
	var habits []HabitEvent
	for d := 0; d < 12; d++ {
		level := 4
		if d%2 == 0 {
			level = 9
			if d < 10 {
				habits = append(habits, completed(at(d, 7), "journal"))
			}
		}
		moods = append(moods, mood(at(d, 20), level))
	}

	findings := correlate(t, newTestAnalyzer(), moods, habits)
	require.Len(t, findings, 1)
	assert.Equal(t, HintCoincidental, findings[0].CausalHint)
	assert.Greater(t, findings[0].CorrelationCoefficient, 0.0)
	assert.Less(t, findings[0].NextDayLift, 0.0)
}

func TestCorrelateInsufficientData(t *testing.T) {
	a := newTestAnalyzer()
	var moods []MoodRecord
	for d := 0; d < 20; d++ {
		moods = append(moods, mood(at(d, 20), 3+d%5))
	}

	for completions := 0; completions < a.Config().MinCorrelationSamples; completions++ {
		var habits []HabitEvent
		for d := 0; d < 20; d++ {
			habits = append(habits, HabitEvent{Timestamp: at(d, 7), HabitID: "walk", Completed: d < completions})
		}
		findings := correlate(t, a, moods, habits)
		require.Len(t, findings, 1, "completions=%d", completions)
		assert.Equal(t, HintInsufficientData, findings[0].CausalHint)
		assert.Zero(t, findings[0].CorrelationCoefficient)
		assert.Equal(t, completions, findings[0].SampleCount)
	}
}

func TestCorrelateOneFindingPerHabit(t *testing.T) {
	var moods []MoodRecord
	var habits []HabitEvent
	for d := 0; d < 14; d++ {
		moods = append(moods, mood(at(d, 20), 4+d%3))
		habits = append(habits, completed(at(d, 6), "yoga"))
		if d%2 == 0 {
			habits = append(habits, completed(at(d, 7), "cold-shower"))
		}
		if d == 3 {
			habits = append(habits, completed(at(d, 8), "alpha"))
		}
	}

	findings := correlate(t, newTestAnalyzer(), moods, habits)
	require.Len(t, findings, 3)
	assert.Equal(t, "alpha", findings[0].HabitID)
	assert.Equal(t, HintInsufficientData, findings[0].CausalHint)
	assert.Equal(t, "cold-shower", findings[1].HabitID)
	assert.NotEqual(t, HintInsufficientData, findings[1].CausalHint)
	// Done every day: no cohort without the habit.
	assert.Equal(t, "yoga", findings[2].HabitID)
	assert.Equal(t, HintInsufficientData, findings[2].CausalHint)
	assert.Zero(t, findings[2].CorrelationCoefficient)
}

func TestCorrelateNoHabits(t *testing.T) {
	findings := correlate(t, newTestAnalyzer(), []MoodRecord{mood(at(0, 9), 5)}, nil)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestCorrelateDeterministic(t *testing.T) {
	var moods []MoodRecord
	var habits []HabitEvent
	for d := 0; d < 30; d++ {
		moods = append(moods, mood(at(d, 20), 2+(d*7)%9))
		if d%3 != 0 {
			habits = append(habits, completed(at(d, 7), "run"))
		}
		if d%4 == 0 {
			habits = append(habits, completed(at(d, 8), "read"))
		}
	}
	a := newTestAnalyzer()
	assert.Equal(t, correlate(t, a, moods, habits), correlate(t, a, moods, habits))
}
