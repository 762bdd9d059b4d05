package pattern

import (
	"math"
	"sort"
	"time"
)

type episode struct {
	start       time.Time
	recoveredAt time.Time
	ongoing     bool
}

func (e episode) recoveryDays() float64 {
	return e.recoveredAt.Sub(e.start).Hours() / 24
}

// Baseline returns the level below which a reading counts as low mood.
func (a *Analyzer) Baseline(agg *Aggregation) float64 {
	if agg.Overall.Count < a.config.MinBaselineSamples {
		return a.config.AbsoluteFloor
	}
	return agg.Overall.Mean - a.config.BaselineStdDevs*agg.Overall.StdDev
}

// Resilience measures recovery from low-mood episodes. An episode is a maximal run
// of consecutive readings below baseline; it recovers at the first reading at or
// above baseline. An episode still open at the end of the window is flagged as
// ongoing and excluded from the averages.
func (a *Analyzer) Resilience(agg *Aggregation) ResilienceIndex {
	idx := EmptyResilience()
	if agg.IsEmpty() {
		return idx
	}
	baseline := a.Baseline(agg)
	idx.Baseline = baseline
	idx.SampleCount = agg.Overall.Count

	episodes := findEpisodes(agg.Moods, baseline)
	var completed []episode
	for _, e := range episodes {
		if e.ongoing {
			idx.OngoingEpisode = true
			continue
		}
		completed = append(completed, e)
	}
	idx.EpisodesAnalyzed = len(completed)
	if len(episodes) > 0 {
		idx.RecoverySuccessRate = float64(len(completed)) / float64(len(episodes))
	}
	if len(completed) == 0 {
		return idx
	}

	first, last := agg.Moods[0].Timestamp, agg.Moods[len(agg.Moods)-1].Timestamp
	midpoint := first.Add(last.Sub(first) / 2)

	recoveries := make([]float64, len(completed))
	idx.FastestRecoveryDays = math.Inf(1)
	for i, e := range completed {
		recoveries[i] = e.recoveryDays()
		idx.FastestRecoveryDays = math.Min(idx.FastestRecoveryDays, recoveries[i])
		idx.SlowestRecoveryDays = math.Max(idx.SlowestRecoveryDays, recoveries[i])
	}
	idx.AverageRecoveryDays = mean(recoveries)
	idx.Trend = recoveryTrend(completed, midpoint, a.config.TrendMarginDays)
	idx.Score = clamp(idx.RecoverySuccessRate*10-idx.AverageRecoveryDays, 0, 10)
	idx.RecoveryStrategies = recoveryStrategies(completed, agg.Habits, 3)
	return idx
}

func findEpisodes(moods []MoodRecord, baseline float64) []episode {
	var episodes []episode
	var current *episode
	for _, m := range moods {
		low := float64(m.Level) < baseline
		switch {
		case low && current == nil:
			current = &episode{start: m.Timestamp}
		case !low && current != nil:
			current.recoveredAt = m.Timestamp
			episodes = append(episodes, *current)
			current = nil
		}
	}
	if current != nil {
		current.ongoing = true
		episodes = append(episodes, *current)
	}
	return episodes
}

// recoveryTrend compares the mean recovery of episodes starting at or after
// midpoint with those starting before it. A half without episodes gives
// TrendStable.
func recoveryTrend(episodes []episode, midpoint time.Time, margin float64) Trend {
	var earlier, recent []float64
	for _, e := range episodes {
		if e.start.Before(midpoint) {
			earlier = append(earlier, e.recoveryDays())
		} else {
			recent = append(recent, e.recoveryDays())
		}
	}
	if len(earlier) == 0 || len(recent) == 0 {
		return TrendStable
	}

	diff := mean(earlier) - mean(recent)
	switch {
	case diff > margin:
		return TrendImproving
	case -diff > margin:
		return TrendWorsening
	default:
		return TrendStable
	}
}

// recoveryStrategies returns the habits most often completed while an episode was
// recovering, most frequent first, ties by name.
func recoveryStrategies(episodes []episode, habits []HabitEvent, limit int) []string {
	counts := make(map[string]int)
	for _, e := range episodes {
		for _, h := range habits {
			if !h.Completed || h.Timestamp.Before(e.start) || h.Timestamp.After(e.recoveredAt) {
				continue
			}
			counts[h.HabitID]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}
