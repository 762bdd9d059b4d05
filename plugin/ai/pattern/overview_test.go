package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("not enough data", func(t *testing.T) {
		agg, err := a.Aggregate([]MoodRecord{mood(at(0, 9), 5), mood(at(1, 9), 6)}, nil)
		require.NoError(t, err)
		s := a.Summarize(agg)
		assert.False(t, s.HasEnoughData)
		assert.Equal(t, 2, s.DataPoints)
		assert.Empty(t, s.Weekdays)
		assert.Empty(t, s.BestDay)
	})

	t.Run("weekly dip", func(t *testing.T) {
		moods := weeklyFridayDip(2)
		moods[len(moods)-1].Level = 9 // last Sunday
		agg, err := a.Aggregate(moods, nil)
		require.NoError(t, err)
		s := a.Summarize(agg)

		assert.True(t, s.HasEnoughData)
		assert.Equal(t, 14, s.DataPoints)
		assert.Len(t, s.Weekdays, 7)
		assert.Equal(t, "Monday", s.Weekdays[0].Day)
		assert.Equal(t, "Friday", s.WorstDay)
		assert.Equal(t, "Sunday", s.BestDay)
		assert.Greater(t, s.MoodStability, 0.0)
		assert.Greater(t, s.RecentAverage, 0.0)
	})
}
