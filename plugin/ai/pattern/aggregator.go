package pattern

import (
	"sort"
	"time"
)

// Aggregate buckets the records by weekday, hour of day, calendar day, calendar
// month and trailing window. Records must be ordered by timestamp; the input is
// validated with a single scan and never sorted. Empty input yields an empty
// aggregation, not an error.
func (a *Analyzer) Aggregate(moods []MoodRecord, habits []HabitEvent) (*Aggregation, error) {
	if err := checkOrdering(moods, habits); err != nil {
		return nil, err
	}
	loc := a.config.Location

	agg := &Aggregation{
		ByWeekday: []DayBucket{},
		ByHour:    []DayBucket{},
		Daily:     []DailySummary{},
		ByMonth:   []MonthBucket{},
		Rolling:   []RollingWindow{},
		HabitIDs:  habitIDs(habits),
		Moods:     moods,
		Habits:    habits,
		Location:  loc,
	}
	if len(moods) == 0 {
		return agg, nil
	}

	all := make([]float64, 0, len(moods))
	var byWeekday [7][]float64
	var byHour [24][]float64
	for _, m := range moods {
		t := m.Timestamp.In(loc)
		level := float64(m.Level)
		all = append(all, level)
		byWeekday[weekdayIndex(t.Weekday())] = append(byWeekday[weekdayIndex(t.Weekday())], level)
		byHour[t.Hour()] = append(byHour[t.Hour()], level)
	}
	agg.Overall = describe(all)

	for day, levels := range byWeekday {
		if len(levels) == 0 {
			continue
		}
		agg.ByWeekday = append(agg.ByWeekday, newBucket(day, nil, levels))
	}
	for hour, levels := range byHour {
		if len(levels) == 0 {
			continue
		}
		h := hour
		agg.ByHour = append(agg.ByHour, newBucket(AllDays, &h, levels))
	}

	agg.Daily = dailySummaries(moods, loc)
	agg.ByMonth = monthBuckets(moods, agg.Daily, loc)
	agg.Rolling = rollingWindows(moods, agg.Daily, a.config.RollingWindowDays, loc)
	return agg, nil
}

func newBucket(day int, hour *int, levels []float64) DayBucket {
	s := describe(levels)
	return DayBucket{
		DayOfWeek:   day,
		HourOfDay:   hour,
		MeanMood:    s.Mean,
		Variance:    s.Variance,
		SampleCount: s.Count,
	}
}

func habitIDs(habits []HabitEvent) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, h := range habits {
		if _, ok := seen[h.HabitID]; ok {
			continue
		}
		seen[h.HabitID] = struct{}{}
		ids = append(ids, h.HabitID)
	}
	sort.Strings(ids)
	return ids
}

// dailySummaries groups ordered moods by calendar day.
func dailySummaries(moods []MoodRecord, loc *time.Location) []DailySummary {
	var out []DailySummary
	var levels []float64
	hours := make(map[int]struct{})
	var current DailySummary

	flush := func() {
		if len(levels) == 0 {
			return
		}
		current.MeanMood = mean(levels)
		current.SampleCount = len(levels)
		current.DistinctHours = len(hours)
		out = append(out, current)
	}

	for _, m := range moods {
		t := m.Timestamp.In(loc)
		date := startOfDay(t, loc)
		if len(levels) == 0 || !date.Equal(current.Date) {
			flush()
			levels = levels[:0]
			hours = make(map[int]struct{})
			current = DailySummary{Date: date, MinLevel: m.Level, TroughHour: t.Hour()}
		}
		levels = append(levels, float64(m.Level))
		hours[t.Hour()] = struct{}{}
		if m.Level < current.MinLevel {
			current.MinLevel = m.Level
			current.TroughHour = t.Hour()
		}
	}
	flush()
	return out
}

// monthBuckets groups readings and daily summaries by calendar month.
func monthBuckets(moods []MoodRecord, daily []DailySummary, loc *time.Location) []MonthBucket {
	var out []MonthBucket
	index := make(map[[2]int]int)
	levels := make(map[[2]int][]float64)

	for _, m := range moods {
		t := m.Timestamp.In(loc)
		key := [2]int{t.Year(), int(t.Month())}
		if _, ok := index[key]; !ok {
			index[key] = len(out)
			out = append(out, MonthBucket{Year: t.Year(), Month: t.Month()})
		}
		levels[key] = append(levels[key], float64(m.Level))
	}

	for i := range out {
		key := [2]int{out[i].Year, int(out[i].Month)}
		s := describe(levels[key])
		out[i].MeanMood = s.Mean
		out[i].Variance = s.Variance
		out[i].SampleCount = s.Count
	}

	// Daily summaries are chronological, so the first strictly lower mean wins ties.
	troughSet := make(map[int]bool)
	for _, d := range daily {
		i := index[[2]int{d.Date.Year(), int(d.Date.Month())}]
		if !troughSet[i] || d.MeanMood < out[i].TroughMean {
			out[i].TroughDay = d.Date.Day()
			out[i].TroughMean = d.MeanMood
			troughSet[i] = true
		}
	}
	return out
}

// rollingWindows computes, for every day with readings, the statistics of the
// trailing window of windowDays calendar days ending on that day.
func rollingWindows(moods []MoodRecord, daily []DailySummary, windowDays int, loc *time.Location) []RollingWindow {
	out := make([]RollingWindow, 0, len(daily))
	start := 0
	end := 0
	for _, d := range daily {
		windowStart := d.Date.AddDate(0, 0, -(windowDays - 1))
		dayEnd := d.Date.AddDate(0, 0, 1)
		for end < len(moods) && moods[end].Timestamp.In(loc).Before(dayEnd) {
			end++
		}
		for start < end && moods[start].Timestamp.In(loc).Before(windowStart) {
			start++
		}
		levels := make([]float64, 0, end-start)
		for _, m := range moods[start:end] {
			levels = append(levels, float64(m.Level))
		}
		s := describe(levels)
		out = append(out, RollingWindow{
			Date:        d.Date,
			MeanMood:    s.Mean,
			Variance:    s.Variance,
			SampleCount: s.Count,
		})
	}
	return out
}
