package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEmpty(t *testing.T) {
	agg, err := newTestAnalyzer().Aggregate(nil, nil)
	require.NoError(t, err)
	assert.True(t, agg.IsEmpty())
	assert.Empty(t, agg.ByWeekday)
	assert.Empty(t, agg.ByHour)
	assert.Empty(t, agg.Daily)
	assert.Empty(t, agg.ByMonth)
	assert.Empty(t, agg.HabitIDs)
}

func TestAggregateRejectsUnorderedRecords(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("moods", func(t *testing.T) {
		_, err := a.Aggregate([]MoodRecord{mood(at(1, 9), 5), mood(at(0, 9), 5)}, nil)
		var orderErr *DataOrderingError
		require.True(t, errors.As(err, &orderErr))
		assert.Equal(t, "mood", orderErr.Kind)
		assert.Equal(t, 1, orderErr.Index)
	})

	t.Run("habits", func(t *testing.T) {
		habits := []HabitEvent{completed(at(0, 9), "a"), completed(at(0, 9), "b"), completed(at(0, 8), "a")}
		_, err := a.Aggregate(nil, habits)
		var orderErr *DataOrderingError
		require.True(t, errors.As(err, &orderErr))
		assert.Equal(t, "habit", orderErr.Kind)
		assert.Equal(t, 2, orderErr.Index)
	})

	t.Run("equal timestamps are ordered", func(t *testing.T) {
		_, err := a.Aggregate([]MoodRecord{mood(at(0, 9), 5), mood(at(0, 9), 6)}, nil)
		assert.NoError(t, err)
	})
}

func TestAggregateRejectsInvalidLevel(t *testing.T) {
	_, err := newTestAnalyzer().Aggregate([]MoodRecord{mood(at(0, 9), 11)}, nil)
	assert.ErrorIs(t, err, ErrInvalidMoodLevel)
}

func TestAggregateBuckets(t *testing.T) {
	moods := []MoodRecord{
		mood(at(0, 9), 4),  // Monday
		mood(at(0, 18), 6), // Monday
		mood(at(1, 9), 8),  // Tuesday
	}
	habits := []HabitEvent{completed(at(0, 7), "walk"), completed(at(1, 7), "read"), completed(at(1, 8), "walk")}

	agg, err := newTestAnalyzer().Aggregate(moods, habits)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.Overall.Count)
	assert.InDelta(t, 6.0, agg.Overall.Mean, 1e-9)

	require.Len(t, agg.ByWeekday, 2)
	assert.Equal(t, 0, agg.ByWeekday[0].DayOfWeek)
	assert.Nil(t, agg.ByWeekday[0].HourOfDay)
	assert.InDelta(t, 5.0, agg.ByWeekday[0].MeanMood, 1e-9)
	assert.InDelta(t, 1.0, agg.ByWeekday[0].Variance, 1e-9)
	assert.Equal(t, 2, agg.ByWeekday[0].SampleCount)
	assert.Equal(t, 1, agg.ByWeekday[1].DayOfWeek)

	require.Len(t, agg.ByHour, 2)
	assert.Equal(t, AllDays, agg.ByHour[0].DayOfWeek)
	require.NotNil(t, agg.ByHour[0].HourOfDay)
	assert.Equal(t, 9, *agg.ByHour[0].HourOfDay)
	assert.InDelta(t, 6.0, agg.ByHour[0].MeanMood, 1e-9)
	assert.Equal(t, 18, *agg.ByHour[1].HourOfDay)

	require.Len(t, agg.Daily, 2)
	assert.True(t, agg.Daily[0].Date.Equal(monday))
	assert.Equal(t, 4, agg.Daily[0].MinLevel)
	assert.Equal(t, 9, agg.Daily[0].TroughHour)
	assert.Equal(t, 2, agg.Daily[0].DistinctHours)

	require.Len(t, agg.ByMonth, 1)
	assert.Equal(t, time.March, agg.ByMonth[0].Month)
	assert.Equal(t, 3, agg.ByMonth[0].TroughDay)
	assert.InDelta(t, 5.0, agg.ByMonth[0].TroughMean, 1e-9)

	require.Len(t, agg.Rolling, 2)
	assert.Equal(t, 2, agg.Rolling[0].SampleCount)
	assert.Equal(t, 3, agg.Rolling[1].SampleCount)
	assert.InDelta(t, 6.0, agg.Rolling[1].MeanMood, 1e-9)

	assert.Equal(t, []string{"read", "walk"}, agg.HabitIDs)
}

func TestAggregateRollingWindowDropsOldReadings(t *testing.T) {
	moods := []MoodRecord{mood(at(0, 9), 2), mood(at(6, 9), 6), mood(at(7, 9), 8)}
	agg, err := newTestAnalyzer().Aggregate(moods, nil)
	require.NoError(t, err)
	require.Len(t, agg.Rolling, 3)
	// Day 6 still sees day 0; day 7 does not.
	assert.Equal(t, 2, agg.Rolling[1].SampleCount)
	assert.Equal(t, 2, agg.Rolling[2].SampleCount)
	assert.InDelta(t, 7.0, agg.Rolling[2].MeanMood, 1e-9)
}

func TestAggregateUsesLocation(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	cfg.Location = time.FixedZone("UTC+9", 9*3600)
	a := NewAnalyzer(cfg, nil)

	// Monday 23:30 UTC is Tuesday 08:30 at UTC+9.
	agg, err := a.Aggregate([]MoodRecord{mood(at(0, 23).Add(30*time.Minute), 5)}, nil)
	require.NoError(t, err)
	require.Len(t, agg.ByWeekday, 1)
	assert.Equal(t, 1, agg.ByWeekday[0].DayOfWeek)
	assert.Equal(t, 8, *agg.ByHour[0].HourOfDay)
	assert.Equal(t, 4, agg.Daily[0].Date.Day())
}
