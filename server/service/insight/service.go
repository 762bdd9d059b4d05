// Package insight exposes the pattern detection and recommendation engine to
// the rest of the server.
//
// Key features:
//   - Cycle, correlation and resilience analyses over a lookback window
//   - Concurrent analyses joined by the recommendation ranker
//   - Per-user caching with explicit invalidation on ingestion
//
// The service reads records through the RecordStore interface and never
// mutates them.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/moodsense/plugin/ai/cache"
	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/plugin/ai/recommend"
	"github.com/hrygo/moodsense/store"
)

// RecordStore returns a user's records in the half-open window [since, until),
// ordered by timestamp.
type RecordStore interface {
	GetMoodRecords(ctx context.Context, userID int32, since, until time.Time) ([]*store.MoodRecord, error)
	GetHabitEvents(ctx context.Context, userID int32, since, until time.Time) ([]*store.HabitEvent, error)
}

// SummaryWriter persists derived analysis summaries.
type SummaryWriter interface {
	UpsertInsightSummary(ctx context.Context, upsert *store.InsightSummary) (*store.InsightSummary, error)
}

// Overview bundles every analysis of a user.
type Overview struct {
	Summary      pattern.Summary              `json:"summary"`
	Cycle        pattern.CycleSignal          `json:"cycle"`
	Correlations []pattern.CorrelationFinding `json:"correlations"`
	Resilience   pattern.ResilienceIndex      `json:"resilience"`
	Insights     []string                     `json:"insights"`
}

// Service computes and caches insights per user.
type Service struct {
	records   RecordStore
	summaries SummaryWriter
	cache     *cache.AnalysisCache
	analyzer  *pattern.Analyzer
	ranker    *recommend.Ranker
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSummaryWriter persists a JSON summary after each fresh analysis.
func WithSummaryWriter(w SummaryWriter) Option {
	return func(s *Service) { s.summaries = w }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an insight service.
func NewService(records RecordStore, c *cache.AnalysisCache, analyzer *pattern.Analyzer, ranker *recommend.Ranker, opts ...Option) *Service {
	s := &Service{
		records:  records,
		cache:    c,
		analyzer: analyzer,
		ranker:   ranker,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRecommendations returns ranked recommendations for the user. currentMood
// may be nil when the caller does not know the user's present mood.
func (s *Service) GetRecommendations(ctx context.Context, userID int32, currentMood *int) ([]recommend.Recommendation, error) {
	if currentMood != nil && (*currentMood < 1 || *currentMood > 10) {
		return nil, fmt.Errorf("current mood %d: %w", *currentMood, pattern.ErrInvalidMoodLevel)
	}

	suffix := "mood=none"
	if currentMood != nil {
		suffix = "mood=" + strconv.Itoa(*currentMood)
	}
	key := cache.Key{UserID: userID, Kind: cache.KindRecommendations, Suffix: suffix}

	return cache.Get(ctx, s.cache, key, func(ctx context.Context) ([]recommend.Recommendation, error) {
		a, err := s.analyze(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.ranker.Rank(recommend.Input{
			Cycle:        a.cycle,
			Correlations: a.correlations,
			Resilience:   a.resilience,
			CurrentMood:  currentMood,
			Now:          s.now(),
		}), nil
	})
}

// GetNextAction returns the one recommendation to act on now, or nil when
// there is nothing to recommend.
func (s *Service) GetNextAction(ctx context.Context, userID int32, currentMood *int) (*recommend.Recommendation, error) {
	recs, err := s.GetRecommendations(ctx, userID, currentMood)
	if err != nil {
		return nil, err
	}
	next, ok := recommend.NextAction(recs)
	if !ok {
		return nil, nil
	}
	return &next, nil
}

// GetCycleSignal returns the user's dominant mood rhythm.
func (s *Service) GetCycleSignal(ctx context.Context, userID int32) (pattern.CycleSignal, error) {
	key := cache.Key{UserID: userID, Kind: cache.KindCycle}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (pattern.CycleSignal, error) {
		agg, err := s.aggregation(ctx, userID)
		if err != nil {
			return pattern.CycleSignal{}, err
		}
		signal := s.analyzer.DetectCycle(agg, s.now())
		s.persist(ctx, userID, cache.KindCycle, signal)
		return signal, nil
	})
}

// GetCorrelations returns one finding per habit tracked in the window.
func (s *Service) GetCorrelations(ctx context.Context, userID int32) ([]pattern.CorrelationFinding, error) {
	key := cache.Key{UserID: userID, Kind: cache.KindCorrelation}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) ([]pattern.CorrelationFinding, error) {
		agg, err := s.aggregation(ctx, userID)
		if err != nil {
			return nil, err
		}
		findings := s.analyzer.Correlate(agg)
		s.persist(ctx, userID, cache.KindCorrelation, findings)
		return findings, nil
	})
}

// GetResilience returns the user's recovery profile.
func (s *Service) GetResilience(ctx context.Context, userID int32) (pattern.ResilienceIndex, error) {
	key := cache.Key{UserID: userID, Kind: cache.KindResilience}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (pattern.ResilienceIndex, error) {
		agg, err := s.aggregation(ctx, userID)
		if err != nil {
			return pattern.ResilienceIndex{}, err
		}
		index := s.analyzer.Resilience(agg)
		s.persist(ctx, userID, cache.KindResilience, index)
		return index, nil
	})
}

// GetOverview returns the summary statistics together with every analysis.
func (s *Service) GetOverview(ctx context.Context, userID int32) (*Overview, error) {
	key := cache.Key{UserID: userID, Kind: cache.KindOverview}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (*Overview, error) {
		agg, err := s.aggregation(ctx, userID)
		if err != nil {
			return nil, err
		}
		a, err := s.analyze(ctx, userID)
		if err != nil {
			return nil, err
		}
		summary := s.analyzer.Summarize(agg)
		return &Overview{
			Summary:      summary,
			Cycle:        a.cycle,
			Correlations: a.correlations,
			Resilience:   a.resilience,
			Insights:     pattern.ActionableInsights(summary, a.correlations),
		}, nil
	})
}

// InvalidateUserCache drops every cached result of the user. Called whenever a
// record is ingested for that user.
func (s *Service) InvalidateUserCache(userID int32) int {
	removed := s.cache.InvalidateUser(userID)
	slog.Debug("invalidated insight cache", "user_id", userID, "removed", removed)
	return removed
}

// InvalidateCache drops the user's cached results of one kind, or all of them
// when kind is empty or "all".
func (s *Service) InvalidateCache(userID int32, kind string) (int, error) {
	if kind == "" || kind == "all" {
		return s.InvalidateUserCache(userID), nil
	}
	k := cache.Kind(kind)
	if !k.Valid() {
		return 0, fmt.Errorf("unknown analysis kind %q", kind)
	}
	return s.cache.Invalidate(userID, k), nil
}

// Warm computes the user's analyses so later requests hit the cache.
func (s *Service) Warm(ctx context.Context, userID int32) error {
	_, err := s.analyze(ctx, userID)
	return err
}

// CacheStats returns the cache counters per kind.
func (s *Service) CacheStats() map[cache.Kind]cache.KindStats {
	return s.cache.Stats()
}

type analyses struct {
	cycle        pattern.CycleSignal
	correlations []pattern.CorrelationFinding
	resilience   pattern.ResilienceIndex
}

// analyze runs the three analyses concurrently and waits for all of them.
func (s *Service) analyze(ctx context.Context, userID int32) (analyses, error) {
	var a analyses
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a.cycle, err = s.GetCycleSignal(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		a.correlations, err = s.GetCorrelations(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		a.resilience, err = s.GetResilience(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return analyses{}, err
	}
	return a, nil
}

func (s *Service) aggregation(ctx context.Context, userID int32) (*pattern.Aggregation, error) {
	key := cache.Key{UserID: userID, Kind: cache.KindAggregation}
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (*pattern.Aggregation, error) {
		start := time.Now()
		moods, habits, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		agg, err := s.analyzer.Aggregate(moods, habits)
		if err != nil {
			slog.Error("failed to aggregate records", "user_id", userID, "error", err)
			return nil, err
		}
		slog.Debug("aggregated records",
			"user_id", userID,
			"moods", len(moods),
			"habits", len(habits),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return agg, nil
	})
}

// load fetches the lookback window of mood and habit records. Stores keep
// second resolution, so the window ends after the current second to include
// records ingested a moment ago.
func (s *Service) load(ctx context.Context, userID int32) ([]pattern.MoodRecord, []pattern.HabitEvent, error) {
	now := s.now()
	until := now.Truncate(time.Second).Add(time.Second)
	since := now.AddDate(0, 0, -s.analyzer.Config().LookbackDays)

	var (
		moodRows  []*store.MoodRecord
		habitRows []*store.HabitEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		moodRows, err = s.records.GetMoodRecords(gctx, userID, since, until)
		if err != nil {
			return fmt.Errorf("failed to get mood records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		habitRows, err = s.records.GetHabitEvents(gctx, userID, since, until)
		if err != nil {
			return fmt.Errorf("failed to get habit events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	moods := make([]pattern.MoodRecord, 0, len(moodRows))
	for _, row := range moodRows {
		moods = append(moods, pattern.MoodRecord{
			Timestamp: row.Timestamp,
			Level:     row.Level,
			Note:      row.Note,
		})
	}
	habits := make([]pattern.HabitEvent, 0, len(habitRows))
	for _, row := range habitRows {
		habits = append(habits, pattern.HabitEvent{
			Timestamp: row.Timestamp,
			HabitID:   row.HabitID,
			Completed: row.Completed,
		})
	}
	return moods, habits, nil
}

// persist stores a JSON summary of a fresh analysis. Failures are logged only.
func (s *Service) persist(ctx context.Context, userID int32, kind cache.Kind, v any) {
	if s.summaries == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to encode insight summary", "user_id", userID, "kind", kind, "error", err)
		return
	}
	if _, err := s.summaries.UpsertInsightSummary(ctx, &store.InsightSummary{
		UserID:     userID,
		Kind:       string(kind),
		Payload:    string(payload),
		ComputedAt: s.now(),
	}); err != nil {
		slog.Warn("failed to save insight summary", "user_id", userID, "kind", kind, "error", err)
	}
}
