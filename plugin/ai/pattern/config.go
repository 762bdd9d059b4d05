package pattern

import "time"

// AnalysisConfig holds the thresholds used by the analyzers.
// The defaults are heuristics; every value can be tuned per deployment.
type AnalysisConfig struct {
	LookbackDays      int            // Records older than this are not read.
	Location          *time.Location // Zone for weekday, hour and date bucketing.
	RollingWindowDays int

	// Weekly rhythm
	MinWeeklySamples int     // Minimum readings on the trough weekday.
	WeeklyStdDevs    float64 // Trough must sit this many std-devs below the overall mean.

	// Daily rhythm
	MinDailyTroughDays int     // Distinct days sharing the trough hour.
	DailyConsistency   float64 // Share of qualifying days that must share the trough hour.

	// Monthly rhythm
	MinMonthlyRecurrences int
	MonthlyWindowDays     int

	// Confidence = n/(n+ConfidenceSampleHalf) * min(1, z/ConfidenceFullDeviation)
	ConfidenceSampleHalf    float64
	ConfidenceFullDeviation float64

	// Correlation
	MinCorrelationSamples int
	MinEffect             float64 // Next-day mood lift required for habit_leads_mood.

	// Resilience
	BaselineStdDevs    float64
	MinBaselineSamples int
	AbsoluteFloor      float64 // Baseline used when history is too short.
	TrendMarginDays    float64

	// Overview
	LowMoodLevel  int // Readings at or below this level are scanned for triggers.
	MinDataPoints int
}

// DefaultAnalysisConfig returns the default configuration.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		LookbackDays:            30,
		Location:                time.UTC,
		RollingWindowDays:       7,
		MinWeeklySamples:        3,
		WeeklyStdDevs:           1.0,
		MinDailyTroughDays:      5,
		DailyConsistency:        0.6,
		MinMonthlyRecurrences:   2,
		MonthlyWindowDays:       2,
		ConfidenceSampleHalf:    3,
		ConfidenceFullDeviation: 2.0,
		MinCorrelationSamples:   5,
		MinEffect:               1.0,
		BaselineStdDevs:         1.0,
		MinBaselineSamples:      7,
		AbsoluteFloor:           4,
		TrendMarginDays:         0.5,
		LowMoodLevel:            4,
		MinDataPoints:           5,
	}
}

// withDefaults fills zero-valued fields from DefaultAnalysisConfig.
func (c AnalysisConfig) withDefaults() AnalysisConfig {
	d := DefaultAnalysisConfig()
	if c.LookbackDays <= 0 {
		c.LookbackDays = d.LookbackDays
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	if c.RollingWindowDays <= 0 {
		c.RollingWindowDays = d.RollingWindowDays
	}
	if c.MinWeeklySamples <= 0 {
		c.MinWeeklySamples = d.MinWeeklySamples
	}
	if c.WeeklyStdDevs <= 0 {
		c.WeeklyStdDevs = d.WeeklyStdDevs
	}
	if c.MinDailyTroughDays <= 0 {
		c.MinDailyTroughDays = d.MinDailyTroughDays
	}
	if c.DailyConsistency <= 0 {
		c.DailyConsistency = d.DailyConsistency
	}
	if c.MinMonthlyRecurrences <= 0 {
		c.MinMonthlyRecurrences = d.MinMonthlyRecurrences
	}
	if c.MonthlyWindowDays < 0 {
		c.MonthlyWindowDays = d.MonthlyWindowDays
	}
	if c.ConfidenceSampleHalf <= 0 {
		c.ConfidenceSampleHalf = d.ConfidenceSampleHalf
	}
	if c.ConfidenceFullDeviation <= 0 {
		c.ConfidenceFullDeviation = d.ConfidenceFullDeviation
	}
	if c.MinCorrelationSamples <= 0 {
		c.MinCorrelationSamples = d.MinCorrelationSamples
	}
	if c.MinEffect <= 0 {
		c.MinEffect = d.MinEffect
	}
	if c.BaselineStdDevs <= 0 {
		c.BaselineStdDevs = d.BaselineStdDevs
	}
	if c.MinBaselineSamples <= 0 {
		c.MinBaselineSamples = d.MinBaselineSamples
	}
	if c.AbsoluteFloor <= 0 {
		c.AbsoluteFloor = d.AbsoluteFloor
	}
	if c.TrendMarginDays <= 0 {
		c.TrendMarginDays = d.TrendMarginDays
	}
	if c.LowMoodLevel <= 0 {
		c.LowMoodLevel = d.LowMoodLevel
	}
	if c.MinDataPoints <= 0 {
		c.MinDataPoints = d.MinDataPoints
	}
	return c
}
