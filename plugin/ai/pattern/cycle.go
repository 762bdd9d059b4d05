package pattern

import (
	"fmt"
	"math"
	"time"
)

// DetectCycle classifies the dominant mood rhythm and predicts its next low point
// after now. Daily, weekly and monthly candidates are evaluated independently; the
// most confident wins and exact ties resolve daily, weekly, monthly. Without a
// qualifying rhythm the result is NoCycle.
func (a *Analyzer) DetectCycle(agg *Aggregation, now time.Time) CycleSignal {
	if agg.IsEmpty() || agg.Overall.StdDev == 0 {
		return NoCycle()
	}

	best := NoCycle()
	for _, candidate := range []CycleSignal{
		a.detectDaily(agg, now),
		a.detectWeekly(agg, now),
		a.detectMonthly(agg, now),
	} {
		if candidate.PeriodKind != PeriodNone && candidate.Confidence > best.Confidence {
			best = candidate
		}
	}
	return best
}

// weeklyTrough picks the weekday with the lowest mean. Ties go to the bucket with
// more samples, then to the earliest weekday.
func weeklyTrough(buckets []DayBucket) (DayBucket, bool) {
	if len(buckets) == 0 {
		return DayBucket{}, false
	}
	trough := buckets[0]
	for _, b := range buckets[1:] {
		switch {
		case b.MeanMood < trough.MeanMood:
			trough = b
		case b.MeanMood == trough.MeanMood && b.SampleCount > trough.SampleCount:
			trough = b
		}
	}
	return trough, true
}

func (a *Analyzer) detectWeekly(agg *Aggregation, now time.Time) CycleSignal {
	trough, ok := weeklyTrough(agg.ByWeekday)
	if !ok || trough.SampleCount < a.config.MinWeeklySamples {
		return NoCycle()
	}
	threshold := agg.Overall.Mean - a.config.WeeklyStdDevs*agg.Overall.StdDev
	if trough.MeanMood >= threshold {
		return NoCycle()
	}
	z := (agg.Overall.Mean - trough.MeanMood) / agg.Overall.StdDev
	next := nextWeekday(now, trough.DayOfWeek, agg.Location)
	return CycleSignal{
		PeriodKind:          PeriodWeekly,
		TroughLabel:         WeekdayName(trough.DayOfWeek),
		Confidence:          Confidence(trough.SampleCount, z, a.config),
		PredictedNextTrough: &next,
		SampleCount:         trough.SampleCount,
	}
}

// detectDaily looks for an hour that is the lowest reading of the day on most days.
// Only days with readings in at least two distinct hours can show an intraday trough.
func (a *Analyzer) detectDaily(agg *Aggregation, now time.Time) CycleSignal {
	hourDays := make(map[int]int)
	qualifying := 0
	for _, d := range agg.Daily {
		if d.DistinctHours < 2 {
			continue
		}
		qualifying++
		hourDays[d.TroughHour]++
	}
	if qualifying == 0 {
		return NoCycle()
	}

	hour, days := -1, 0
	for h := 0; h < 24; h++ {
		if hourDays[h] > days {
			hour, days = h, hourDays[h]
		}
	}
	if days < a.config.MinDailyTroughDays || float64(days) < a.config.DailyConsistency*float64(qualifying) {
		return NoCycle()
	}

	var hourMean float64
	found := false
	for _, b := range agg.ByHour {
		if b.HourOfDay != nil && *b.HourOfDay == hour {
			hourMean, found = b.MeanMood, true
			break
		}
	}
	if !found || hourMean >= agg.Overall.Mean {
		return NoCycle()
	}
	z := (agg.Overall.Mean - hourMean) / agg.Overall.StdDev
	next := nextHour(now, hour, agg.Location)
	return CycleSignal{
		PeriodKind:          PeriodDaily,
		TroughLabel:         fmt.Sprintf("%02d:00", hour),
		Confidence:          Confidence(days, z, a.config),
		PredictedNextTrough: &next,
		SampleCount:         days,
	}
}

// detectMonthly finds the largest group of months whose trough days fall within
// MonthlyWindowDays of each other.
func (a *Analyzer) detectMonthly(agg *Aggregation, now time.Time) CycleSignal {
	months := agg.ByMonth
	if len(months) < a.config.MinMonthlyRecurrences {
		return NoCycle()
	}

	var bestGroup []MonthBucket
	for lo := 1; lo <= 31; lo++ {
		hi := lo + a.config.MonthlyWindowDays
		var group []MonthBucket
		for _, m := range months {
			if m.TroughDay >= lo && m.TroughDay <= hi {
				group = append(group, m)
			}
		}
		if len(group) > len(bestGroup) {
			bestGroup = group
		}
	}
	if len(bestGroup) < a.config.MinMonthlyRecurrences {
		return NoCycle()
	}

	var troughMean, troughDay float64
	for _, m := range bestGroup {
		troughMean += m.TroughMean
		troughDay += float64(m.TroughDay)
	}
	troughMean /= float64(len(bestGroup))
	day := int(math.Round(troughDay / float64(len(bestGroup))))
	if troughMean >= agg.Overall.Mean {
		return NoCycle()
	}

	z := (agg.Overall.Mean - troughMean) / agg.Overall.StdDev
	next := nextMonthDay(now, day, agg.Location)
	return CycleSignal{
		PeriodKind:          PeriodMonthly,
		TroughLabel:         fmt.Sprintf("day %d", day),
		Confidence:          Confidence(len(bestGroup), z, a.config),
		PredictedNextTrough: &next,
		SampleCount:         len(bestGroup),
	}
}

// nextWeekday returns the start of the next day, today included, falling on weekday.
func nextWeekday(now time.Time, weekday int, loc *time.Location) time.Time {
	day := startOfDay(now, loc)
	offset := (weekday - weekdayIndex(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// nextHour returns the next occurrence of hour:00 strictly after now.
func nextHour(now time.Time, hour int, loc *time.Location) time.Time {
	day := startOfDay(now, loc)
	candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
	if !candidate.After(now) {
		candidate = time.Date(day.Year(), day.Month(), day.Day()+1, hour, 0, 0, 0, loc)
	}
	return candidate
}

// nextMonthDay returns the start of the next occurrence of day-of-month, today
// included, clamped to the length of shorter months.
func nextMonthDay(now time.Time, dayOfMonth int, loc *time.Location) time.Time {
	today := startOfDay(now, loc)
	year, month := today.Year(), today.Month()
	d := min(dayOfMonth, daysIn(year, month, loc))
	candidate := time.Date(year, month, d, 0, 0, 0, 0, loc)
	if candidate.Before(today) {
		first := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
		d = min(dayOfMonth, daysIn(first.Year(), first.Month(), loc))
		candidate = time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
	}
	return candidate
}
