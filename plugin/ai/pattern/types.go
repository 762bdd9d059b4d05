// Package pattern detects temporal mood rhythms, habit/mood associations and
// recovery behaviour from a user's historical records.
package pattern

import "time"

// MoodRecord is one mood rating. Level is in [1, 10].
type MoodRecord struct {
	Timestamp time.Time
	Level     int
	Note      string
}

// HabitEvent records a habit outcome at a point in time.
type HabitEvent struct {
	Timestamp time.Time
	HabitID   string
	Completed bool
}

// AllDays marks an hour-of-day bucket that aggregates every weekday.
const AllDays = -1

// DayBucket summarizes the mood readings that fall into one weekday or one hour of day.
type DayBucket struct {
	DayOfWeek   int     `json:"day_of_week"` // 0 = Monday ... 6 = Sunday, AllDays for hour buckets
	HourOfDay   *int    `json:"hour_of_day,omitempty"`
	MeanMood    float64 `json:"mean_mood"`
	Variance    float64 `json:"variance"`
	SampleCount int     `json:"sample_count"`
}

// DailySummary aggregates the readings of one calendar day.
type DailySummary struct {
	Date          time.Time `json:"date"` // midnight in the analysis location
	MeanMood      float64   `json:"mean_mood"`
	MinLevel      int       `json:"min_level"`
	TroughHour    int       `json:"trough_hour"`
	DistinctHours int       `json:"distinct_hours"`
	SampleCount   int       `json:"sample_count"`
}

// MonthBucket aggregates one calendar month.
type MonthBucket struct {
	Year        int        `json:"year"`
	Month       time.Month `json:"month"`
	MeanMood    float64    `json:"mean_mood"`
	Variance    float64    `json:"variance"`
	SampleCount int        `json:"sample_count"`
	// TroughDay is the day of month with the lowest daily mean, earliest on ties.
	TroughDay  int     `json:"trough_day"`
	TroughMean float64 `json:"trough_mean"`
}

// RollingWindow summarizes the trailing window ending on Date (inclusive).
type RollingWindow struct {
	Date        time.Time `json:"date"`
	MeanMood    float64   `json:"mean_mood"`
	Variance    float64   `json:"variance"`
	SampleCount int       `json:"sample_count"`
}

// Stats holds population statistics over a set of mood levels.
type Stats struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Count    int     `json:"count"`
}

// Aggregation is the bucketed view of a user's records that all analyzers read from.
// It is immutable once built.
type Aggregation struct {
	Overall   Stats           `json:"overall"`
	ByWeekday []DayBucket     `json:"by_weekday"`
	ByHour    []DayBucket     `json:"by_hour"`
	Daily     []DailySummary  `json:"daily"`
	ByMonth   []MonthBucket   `json:"by_month"`
	Rolling   []RollingWindow `json:"rolling"`
	// HabitIDs lists every distinct habit seen in the window, sorted.
	HabitIDs []string `json:"habit_ids"`

	Moods    []MoodRecord   `json:"-"`
	Habits   []HabitEvent   `json:"-"`
	Location *time.Location `json:"-"`
}

// IsEmpty reports whether the aggregation holds no mood readings.
func (a *Aggregation) IsEmpty() bool {
	return a == nil || a.Overall.Count == 0
}

// PeriodKind is the dominant rhythm of a CycleSignal.
type PeriodKind string

const (
	PeriodNone    PeriodKind = "none"
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// CycleSignal describes the strongest recurring low point in the user's mood.
type CycleSignal struct {
	PeriodKind          PeriodKind `json:"period_kind"`
	TroughLabel         string     `json:"trough_label"`
	Confidence          float64    `json:"confidence"`
	PredictedNextTrough *time.Time `json:"predicted_next_trough,omitempty"`
	SampleCount         int        `json:"sample_count"`
}

// NoCycle returns the empty signal.
func NoCycle() CycleSignal {
	return CycleSignal{PeriodKind: PeriodNone}
}

// CausalHint classifies the likely direction of a habit/mood association.
type CausalHint string

const (
	HintHabitLeadsMood   CausalHint = "habit_leads_mood"
	HintCoincidental     CausalHint = "coincidental"
	HintInsufficientData CausalHint = "insufficient_data"
)

// CorrelationFinding is the association between one habit and same-day mood.
type CorrelationFinding struct {
	HabitID                string     `json:"habit_id"`
	CorrelationCoefficient float64    `json:"correlation_coefficient"`
	SampleCount            int        `json:"sample_count"`
	CausalHint             CausalHint `json:"causal_hint"`
	MeanMoodWith           float64    `json:"mean_mood_with"`
	MeanMoodWithout        float64    `json:"mean_mood_without"`
	NextDayLift            float64    `json:"next_day_lift"`
}

// Trend is the direction of recovery speed over time.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// ResilienceIndex measures how quickly mood returns to baseline after low episodes.
type ResilienceIndex struct {
	AverageRecoveryDays float64 `json:"average_recovery_days"`
	EpisodesAnalyzed    int     `json:"episodes_analyzed"`
	Trend               Trend   `json:"trend"`

	Baseline            float64  `json:"baseline"`
	SampleCount         int      `json:"sample_count"`
	FastestRecoveryDays float64  `json:"fastest_recovery_days"`
	SlowestRecoveryDays float64  `json:"slowest_recovery_days"`
	OngoingEpisode      bool     `json:"ongoing_episode"`
	RecoverySuccessRate float64  `json:"recovery_success_rate"`
	Score               float64  `json:"score"`
	RecoveryStrategies  []string `json:"recovery_strategies"`
}

// EmptyResilience returns the index for a window without any episodes.
func EmptyResilience() ResilienceIndex {
	return ResilienceIndex{Trend: TrendStable, RecoveryStrategies: []string{}}
}
