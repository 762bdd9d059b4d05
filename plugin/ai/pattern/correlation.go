package pattern

import (
	"math"
	"sort"
	"time"
)

// Correlate returns one finding per tracked habit, ordered by habit id. Habits with
// fewer than MinCorrelationSamples completions are reported with
// HintInsufficientData and a zero coefficient rather than omitted.
func (a *Analyzer) Correlate(agg *Aggregation) []CorrelationFinding {
	findings := make([]CorrelationFinding, 0, len(agg.HabitIDs))
	if len(agg.HabitIDs) == 0 {
		return findings
	}

	loc := agg.Location
	dailyMean := make(map[time.Time]float64, len(agg.Daily))
	for _, d := range agg.Daily {
		dailyMean[d.Date] = d.MeanMood
	}

	for _, habitID := range agg.HabitIDs {
		completedDays := make(map[time.Time]bool)
		observedDays := make(map[time.Time]bool)
		completions := 0
		for _, h := range agg.Habits {
			if h.HabitID != habitID {
				continue
			}
			day := startOfDay(h.Timestamp, loc)
			observedDays[day] = true
			if h.Completed {
				completions++
				completedDays[day] = true
			}
		}

		finding := CorrelationFinding{
			HabitID:     habitID,
			SampleCount: completions,
			CausalHint:  HintInsufficientData,
		}
		if completions < a.config.MinCorrelationSamples {
			findings = append(findings, finding)
			continue
		}

		r, with, without, ok := pointBiserial(agg.Moods, completedDays, loc)
		if !ok {
			findings = append(findings, finding)
			continue
		}
		finding.CorrelationCoefficient = r
		finding.MeanMoodWith = with
		finding.MeanMoodWithout = without
		finding.NextDayLift = nextDayLift(agg.Daily, dailyMean, completedDays)
		if r > 0 && finding.NextDayLift >= a.config.MinEffect {
			finding.CausalHint = HintHabitLeadsMood
		} else {
			finding.CausalHint = HintCoincidental
		}
		findings = append(findings, finding)
	}
	return findings
}

// pointBiserial correlates same-day completion (0/1) with each mood reading:
//
//	r = (M1 - M0) / s * sqrt(p * q)
//
// where s is the population standard deviation of all readings. ok is false when a
// cohort is empty or the readings do not vary.
func pointBiserial(moods []MoodRecord, completedDays map[time.Time]bool, loc *time.Location) (r, meanWith, meanWithout float64, ok bool) {
	all := make([]float64, 0, len(moods))
	var with, without []float64
	for _, m := range moods {
		level := float64(m.Level)
		all = append(all, level)
		if completedDays[startOfDay(m.Timestamp, loc)] {
			with = append(with, level)
		} else {
			without = append(without, level)
		}
	}
	if len(with) == 0 || len(without) == 0 {
		return 0, 0, 0, false
	}
	s := describe(all)
	if s.StdDev == 0 {
		return 0, 0, 0, false
	}
	meanWith, meanWithout = mean(with), mean(without)
	p := float64(len(with)) / float64(s.Count)
	q := 1 - p
	r = (meanWith - meanWithout) / s.StdDev * math.Sqrt(p*q)
	return clamp(r, -1, 1), meanWith, meanWithout, true
}

// nextDayLift is the mean mood on days after a completion day minus the mean mood
// on days after a day with readings but no completion. Days whose successor has no
// readings are skipped; an empty cohort yields zero lift.
func nextDayLift(daily []DailySummary, dailyMean map[time.Time]float64, completedDays map[time.Time]bool) float64 {
	var after, afterWithout []float64
	seen := make(map[time.Time]bool, len(daily))
	days := make([]time.Time, 0, len(daily)+len(completedDays))
	for _, d := range daily {
		days = append(days, d.Date)
		seen[d.Date] = true
	}
	for day := range completedDays {
		if !seen[day] {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		next, ok := dailyMean[day.AddDate(0, 0, 1)]
		if !ok {
			continue
		}
		if completedDays[day] {
			after = append(after, next)
		} else {
			afterWithout = append(afterWithout, next)
		}
	}
	if len(after) == 0 || len(afterWithout) == 0 {
		return 0
	}
	return mean(after) - mean(afterWithout)
}
