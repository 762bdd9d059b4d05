package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resilience(t *testing.T, a *Analyzer, moods []MoodRecord, habits []HabitEvent) ResilienceIndex {
	t.Helper()
	agg, err := a.Aggregate(moods, habits)
	require.NoError(t, err)
	return a.Resilience(agg)
}

// twoEpisodes builds 30 days at level 7 with two low episodes of four readings:
// the first (days 10-11) recovers after 2 days, the second (day 20) after 1 day.
// swap reverses their order.
func twoEpisodes(swap bool) []MoodRecord {
	slow, fast := 10, 20
	if swap {
		slow, fast = 19, 10
	}
	var moods []MoodRecord
	for d := 0; d < 30; d++ {
		switch d {
		case slow, slow + 1:
			moods = append(moods, mood(at(d, 8), 2), mood(at(d, 20), 2))
		case slow + 2:
			moods = append(moods, mood(at(d, 8), 7))
		case fast:
			moods = append(moods, mood(at(d, 6), 2), mood(at(d, 10), 2), mood(at(d, 14), 2), mood(at(d, 18), 2))
		case fast + 1:
			moods = append(moods, mood(at(d, 6), 7))
		default:
			moods = append(moods, mood(at(d, 8), 7))
		}
	}
	return moods
}

func TestResilienceImproving(t *testing.T) {
	idx := resilience(t, newTestAnalyzer(), twoEpisodes(false), nil)

	assert.Equal(t, 2, idx.EpisodesAnalyzed)
	assert.Equal(t, TrendImproving, idx.Trend)
	assert.InDelta(t, 1.5, idx.AverageRecoveryDays, 1e-9)
	assert.InDelta(t, 1.0, idx.FastestRecoveryDays, 1e-9)
	assert.InDelta(t, 2.0, idx.SlowestRecoveryDays, 1e-9)
	assert.InDelta(t, 1.0, idx.RecoverySuccessRate, 1e-9)
	assert.InDelta(t, 8.5, idx.Score, 1e-9)
	assert.False(t, idx.OngoingEpisode)
	assert.Greater(t, idx.Baseline, 2.0)
	assert.Less(t, idx.Baseline, 7.0)
}

func TestResilienceWorsening(t *testing.T) {
	idx := resilience(t, newTestAnalyzer(), twoEpisodes(true), nil)
	assert.Equal(t, 2, idx.EpisodesAnalyzed)
	assert.Equal(t, TrendWorsening, idx.Trend)
}

func TestResilienceTrendSplitsWindowByTime(t *testing.T) {
	// Three episodes in the last week recovering after 2, 1 and 0.5 days. None
	// fall in the earlier half of the window, so there is nothing to compare.
	var moods []MoodRecord
	for d := 0; d < 30; d++ {
		switch d {
		case 22, 23:
			moods = append(moods, mood(at(d, 8), 2))
		case 25:
			moods = append(moods, mood(at(d, 8), 2), mood(at(d, 20), 2))
		case 27:
			moods = append(moods, mood(at(d, 8), 2), mood(at(d, 20), 7))
		default:
			moods = append(moods, mood(at(d, 8), 7))
		}
	}
	idx := resilience(t, newTestAnalyzer(), moods, nil)

	assert.Equal(t, 3, idx.EpisodesAnalyzed)
	assert.InDelta(t, 3.5/3, idx.AverageRecoveryDays, 1e-9)
	assert.Equal(t, TrendStable, idx.Trend)
}

func TestResilienceEmpty(t *testing.T) {
	idx := resilience(t, newTestAnalyzer(), nil, nil)
	assert.Equal(t, 0, idx.EpisodesAnalyzed)
	assert.Equal(t, TrendStable, idx.Trend)
	assert.Zero(t, idx.AverageRecoveryDays)
	assert.Zero(t, idx.SampleCount)
}

func TestResilienceNoEpisodes(t *testing.T) {
	var moods []MoodRecord
	for d := 0; d < 10; d++ {
		moods = append(moods, mood(at(d, 9), 7))
	}
	idx := resilience(t, newTestAnalyzer(), moods, nil)
	assert.Equal(t, 0, idx.EpisodesAnalyzed)
	assert.Equal(t, TrendStable, idx.Trend)
	assert.Equal(t, 10, idx.SampleCount)
	assert.InDelta(t, 7.0, idx.Baseline, 1e-9)
}

func TestResilienceOngoingEpisodeExcluded(t *testing.T) {
	moods := twoEpisodes(false)
	moods = append(moods, mood(at(30, 8), 1), mood(at(31, 8), 1))
	idx := resilience(t, newTestAnalyzer(), moods, nil)

	assert.True(t, idx.OngoingEpisode)
	assert.Equal(t, 2, idx.EpisodesAnalyzed)
	assert.InDelta(t, 1.5, idx.AverageRecoveryDays, 1e-9)
	assert.InDelta(t, 2.0/3.0, idx.RecoverySuccessRate, 1e-9)
}

func TestResilienceShortHistoryUsesFloor(t *testing.T) {
	moods := []MoodRecord{mood(at(0, 9), 7), mood(at(1, 9), 3), mood(at(1, 21), 6)}
	idx := resilience(t, newTestAnalyzer(), moods, nil)

	assert.InDelta(t, 4.0, idx.Baseline, 1e-9)
	assert.Equal(t, 1, idx.EpisodesAnalyzed)
	assert.InDelta(t, 0.5, idx.AverageRecoveryDays, 1e-9)
	assert.Equal(t, TrendStable, idx.Trend)
}

func TestResilienceRecoveryStrategies(t *testing.T) {
	habits := []HabitEvent{
		completed(at(5, 9), "music"),  // outside any episode
		completed(at(10, 12), "walk"), // first episode
		completed(at(11, 12), "walk"),
		completed(at(11, 13), "call-friend"),
		completed(at(20, 12), "call-friend"), // second episode
		completed(at(20, 13), "walk"),
		{Timestamp: at(20, 15), HabitID: "journal", Completed: false},
	}
	idx := resilience(t, newTestAnalyzer(), twoEpisodes(false), habits)
	assert.Equal(t, []string{"walk", "call-friend"}, idx.RecoveryStrategies)
}
