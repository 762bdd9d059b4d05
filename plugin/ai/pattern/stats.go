package pattern

import (
	"math"
	"time"
)

// describe returns population statistics for values.
func describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	variance := sq / float64(len(values))
	return Stats{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Count:    len(values),
	}
}

func mean(values []float64) float64 {
	return describe(values).Mean
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Confidence grows with the number of supporting samples n and the trough's
// deviation z (in standard deviations), capped at 1. For fixed z it is strictly
// increasing in n.
func Confidence(n int, z float64, cfg AnalysisConfig) float64 {
	cfg = cfg.withDefaults()
	if n <= 0 || z <= 0 {
		return 0
	}
	sampleFactor := float64(n) / (float64(n) + cfg.ConfidenceSampleHalf)
	deviationFactor := math.Min(1, z/cfg.ConfidenceFullDeviation)
	return clamp(sampleFactor*deviationFactor, 0, 1)
}

// weekdayIndex maps time.Weekday to a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName returns the English name for a Monday-first index.
func WeekdayName(index int) string {
	if index < 0 || index > 6 {
		return ""
	}
	return weekdayNames[index]
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// WeekdayOf returns the English weekday name of t in its own location.
func WeekdayOf(t time.Time) string {
	return weekdayNames[weekdayIndex(t.Weekday())]
}
