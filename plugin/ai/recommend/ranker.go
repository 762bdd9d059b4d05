// Package recommend turns pattern analyses into a ranked list of suggestions.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hrygo/moodsense/plugin/ai/pattern"
)

// Kind is the type of a recommendation.
type Kind string

const (
	KindPreventive  Kind = "preventive"
	KindChallenge   Kind = "challenge"
	KindMicroAction Kind = "micro_action"
	KindReminder    Kind = "reminder"
)

// Recommendation is a single ranked suggestion.
type Recommendation struct {
	Kind       Kind    `json:"kind"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Urgency    int     `json:"urgency"` // 0..10
	TargetDay  *string `json:"target_day,omitempty"`
}

// Config controls recommendation generation.
type Config struct {
	MaxRecommendations      int
	PreventiveHorizon       time.Duration
	ChallengeMinCorrelation float64
	MaxMicroActions         int
	ReminderUrgency         int
}

// DefaultConfig returns the default ranker configuration.
func DefaultConfig() Config {
	return Config{
		MaxRecommendations:      10,
		PreventiveHorizon:       7 * 24 * time.Hour,
		ChallengeMinCorrelation: 0.3,
		MaxMicroActions:         3,
		ReminderUrgency:         8,
	}
}

// Input bundles the analyses the ranker merges.
type Input struct {
	Cycle        pattern.CycleSignal
	Correlations []pattern.CorrelationFinding
	Resilience   pattern.ResilienceIndex
	// CurrentMood is supplied by the caller; nil means unknown.
	CurrentMood *int
	Now         time.Time
}

// Ranker merges analyses into recommendations.
type Ranker struct {
	config  Config
	catalog *Catalog
}

// NewRanker creates a Ranker. A nil catalog selects DefaultCatalog.
func NewRanker(config Config, catalog *Catalog) *Ranker {
	d := DefaultConfig()
	if config.MaxRecommendations <= 0 {
		config.MaxRecommendations = d.MaxRecommendations
	}
	if config.PreventiveHorizon <= 0 {
		config.PreventiveHorizon = d.PreventiveHorizon
	}
	if config.ChallengeMinCorrelation <= 0 {
		config.ChallengeMinCorrelation = d.ChallengeMinCorrelation
	}
	if config.MaxMicroActions <= 0 {
		config.MaxMicroActions = d.MaxMicroActions
	}
	if config.ReminderUrgency <= 0 {
		config.ReminderUrgency = d.ReminderUrgency
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Ranker{config: config, catalog: catalog}
}

// Rank generates recommendations from each signal independently, then orders them
// by urgency and confidence, both descending, keeping insertion order on ties.
// The result is never nil.
func (r *Ranker) Rank(in Input) []Recommendation {
	recs := make([]Recommendation, 0)
	recs = append(recs, r.preventive(in)...)
	recs = append(recs, r.challenges(in)...)
	recs = append(recs, r.lowMood(in)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Urgency != recs[j].Urgency {
			return recs[i].Urgency > recs[j].Urgency
		}
		return recs[i].Confidence > recs[j].Confidence
	})
	if len(recs) > r.config.MaxRecommendations {
		recs = recs[:r.config.MaxRecommendations]
	}
	return recs
}

// NextAction picks the single recommendation to act on now: the most urgent,
// then the most confident, then the earliest in recs.
func NextAction(recs []Recommendation) (Recommendation, bool) {
	if len(recs) == 0 {
		return Recommendation{}, false
	}
	next := recs[0]
	for _, rec := range recs[1:] {
		if rec.Urgency > next.Urgency || (rec.Urgency == next.Urgency && rec.Confidence > next.Confidence) {
			next = rec
		}
	}
	return next, true
}

func (r *Ranker) preventive(in Input) []Recommendation {
	c := in.Cycle
	if c.PeriodKind == pattern.PeriodNone || c.Confidence <= 0 || c.PredictedNextTrough == nil {
		return nil
	}
	until := c.PredictedNextTrough.Sub(in.Now)
	if until < -24*time.Hour || until > r.config.PreventiveHorizon {
		return nil
	}

	var text string
	switch c.PeriodKind {
	case pattern.PeriodDaily:
		text = fmt.Sprintf("Your mood tends to dip around %s. Plan a short break or something you enjoy just before then.", c.TroughLabel)
	case pattern.PeriodMonthly:
		text = fmt.Sprintf("Your mood tends to dip around %s of the month. Keep that day light and schedule something restorative.", c.TroughLabel)
	default:
		text = fmt.Sprintf("Your mood tends to dip on %ss. Plan something restorative for the coming %s.", c.TroughLabel, c.TroughLabel)
	}
	targetDay := pattern.WeekdayOf(*c.PredictedNextTrough)
	return []Recommendation{{
		Kind:       KindPreventive,
		Text:       text,
		Confidence: clamp01(c.Confidence),
		Urgency:    clampUrgency(math.Round(c.Confidence * 10)),
		TargetDay:  &targetDay,
	}}
}

func (r *Ranker) challenges(in Input) []Recommendation {
	var recs []Recommendation
	for _, f := range in.Correlations {
		if f.CausalHint != pattern.HintHabitLeadsMood || f.CorrelationCoefficient <= r.config.ChallengeMinCorrelation {
			continue
		}
		confidence := clamp01(f.CorrelationCoefficient)
		recs = append(recs, Recommendation{
			Kind:       KindChallenge,
			Text:       fmt.Sprintf("Try a 7-day %s challenge: your mood is higher on the days after you do it.", f.HabitID),
			Confidence: confidence,
			Urgency:    clampUrgency(math.Round(confidence * 8)),
		})
	}
	return recs
}

// lowMood emits micro actions and a recovery reminder when the current mood is
// below the resilience baseline.
func (r *Ranker) lowMood(in Input) []Recommendation {
	res := in.Resilience
	if in.CurrentMood == nil || res.SampleCount == 0 || float64(*in.CurrentMood) >= res.Baseline {
		return nil
	}
	current := *in.CurrentMood

	var recs []Recommendation
	urgency := clampUrgency(math.Round(6 + (res.Baseline - float64(current))))
	for _, entry := range r.catalog.Select(current, res.Baseline, r.config.MaxMicroActions) {
		recs = append(recs, Recommendation{
			Kind:       KindMicroAction,
			Text:       entry.Text,
			Confidence: clamp01(entry.Confidence),
			Urgency:    urgency,
		})
	}
	if res.EpisodesAnalyzed > 0 {
		recs = append(recs, Recommendation{
			Kind: KindReminder,
			Text: fmt.Sprintf("You have recovered from similar episodes before, usually within %.1f days.",
				res.AverageRecoveryDays),
			Confidence: clamp01(res.RecoverySuccessRate),
			Urgency:    r.config.ReminderUrgency,
		})
	}
	return recs
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampUrgency(v float64) int {
	return int(math.Max(0, math.Min(10, v)))
}
