package insight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/moodsense/plugin/ai/cache"
	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/plugin/ai/recommend"
	"github.com/hrygo/moodsense/store"
)

// fakeStore serves records from memory and counts reads.
type fakeStore struct {
	mu        sync.Mutex
	moods     map[int32][]*store.MoodRecord
	habits    map[int32][]*store.HabitEvent
	moodReads atomic.Int32
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		moods:  make(map[int32][]*store.MoodRecord),
		habits: make(map[int32][]*store.HabitEvent),
	}
}

func (f *fakeStore) GetMoodRecords(_ context.Context, userID int32, since, until time.Time) ([]*store.MoodRecord, error) {
	f.moodReads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*store.MoodRecord
	for _, m := range f.moods[userID] {
		if !m.Timestamp.Before(since) && m.Timestamp.Before(until) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetHabitEvents(_ context.Context, userID int32, since, until time.Time) ([]*store.HabitEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*store.HabitEvent
	for _, h := range f.habits[userID] {
		if !h.Timestamp.Before(since) && h.Timestamp.Before(until) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMoodRecord(_ context.Context, create *store.MoodRecord) (*store.MoodRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	create.ID = int64(len(f.moods[create.UserID]) + 1)
	f.moods[create.UserID] = append(f.moods[create.UserID], create)
	return create, nil
}

func (f *fakeStore) CreateHabitEvent(_ context.Context, create *store.HabitEvent) (*store.HabitEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	create.ID = int64(len(f.habits[create.UserID]) + 1)
	f.habits[create.UserID] = append(f.habits[create.UserID], create)
	return create, nil
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeSummaries struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func (f *fakeSummaries) UpsertInsightSummary(_ context.Context, upsert *store.InsightSummary) (*store.InsightSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[upsert.Kind] = upsert.Payload
	return upsert, nil
}

// monday is 2025-03-03; now is the Monday five weeks later at noon.
var (
	monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	now    = monday.AddDate(0, 0, 35).Add(12 * time.Hour)
)

func newTestService(t *testing.T, records RecordStore, opts ...Option) *Service {
	t.Helper()
	cfg := pattern.DefaultAnalysisConfig()
	cfg.LookbackDays = 60

	cacheCfg := cache.DefaultConfig()
	cacheCfg.CleanupInterval = 0
	cacheCfg.Clock = func() time.Time { return now }
	c := cache.New(cacheCfg, nil)
	t.Cleanup(c.Close)

	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewService(records, c, pattern.NewAnalyzer(cfg, nil), recommend.NewRanker(recommend.DefaultConfig(), recommend.DefaultCatalog()), opts...)
}

// seedFridayDip stores one 10:00 reading per day for five weeks: 3 on Fridays, 8 otherwise.
func seedFridayDip(f *fakeStore, userID int32) {
	for d := 0; d < 35; d++ {
		ts := monday.AddDate(0, 0, d).Add(10 * time.Hour)
		level := 8
		if ts.Weekday() == time.Friday {
			level = 3
		}
		f.moods[userID] = append(f.moods[userID], &store.MoodRecord{ID: int64(d + 1), UserID: userID, Timestamp: ts, Level: level})
	}
}

func TestServiceNewUserGetsEmptyResults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeStore())

	recs, err := svc.GetRecommendations(ctx, 1, nil)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	cycle, err := svc.GetCycleSignal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pattern.NoCycle(), cycle)

	findings, err := svc.GetCorrelations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, findings)

	res, err := svc.GetResilience(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.EpisodesAnalyzed)
	assert.Equal(t, pattern.TrendStable, res.Trend)

	overview, err := svc.GetOverview(ctx, 1)
	require.NoError(t, err)
	assert.False(t, overview.Summary.HasEnoughData)
	assert.Empty(t, overview.Insights)

	next, err := svc.GetNextAction(ctx, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestServiceWeeklyCycleDrivesPreventiveRecommendation(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, records)

	cycle, err := svc.GetCycleSignal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pattern.PeriodWeekly, cycle.PeriodKind)
	assert.Equal(t, "Friday", cycle.TroughLabel)
	assert.Greater(t, cycle.Confidence, 0.5)

	recs, err := svc.GetRecommendations(ctx, 1, nil)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, recommend.KindPreventive, recs[0].Kind)
	require.NotNil(t, recs[0].TargetDay)
	assert.Equal(t, "Friday", *recs[0].TargetDay)

	next, err := svc.GetNextAction(ctx, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, recs[0], *next)

	overview, err := svc.GetOverview(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, overview.Insights)
	assert.Contains(t, overview.Insights[0], "than your Fridays (3.0/10)")
}

func TestServiceCacheCoherence(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, records)

	_, err := svc.GetRecommendations(ctx, 1, nil)
	require.NoError(t, err)
	_, err = svc.GetRecommendations(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), records.moodReads.Load())

	svc.InvalidateUserCache(1)
	_, err = svc.GetRecommendations(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), records.moodReads.Load(), "first call after invalidation recomputes")

	stats := svc.CacheStats()[cache.KindRecommendations]
	assert.Equal(t, int64(2), stats.Computations)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestServiceAtMostOneComputation(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, records)

	const callers = 12
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.GetRecommendations(ctx, 1, nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), records.moodReads.Load())
	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats[cache.KindAggregation].Computations)
	assert.Equal(t, int64(1), stats[cache.KindRecommendations].Computations)
}

type unorderedStore struct{ *fakeStore }

func (u unorderedStore) GetMoodRecords(ctx context.Context, userID int32, since, until time.Time) ([]*store.MoodRecord, error) {
	rows, err := u.fakeStore.GetMoodRecords(ctx, userID, since, until)
	if len(rows) > 1 {
		rows[0], rows[1] = rows[1], rows[0]
	}
	return rows, err
}

func TestServiceDataOrderingErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, unorderedStore{records})

	_, err := svc.GetRecommendations(ctx, 1, nil)
	var orderErr *pattern.DataOrderingError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "mood", orderErr.Kind)

	reads := records.moodReads.Load()
	_, err = svc.GetCycleSignal(ctx, 1)
	require.ErrorAs(t, err, &orderErr)
	assert.Greater(t, records.moodReads.Load(), reads, "failed aggregation is retried on the next call")
}

func TestServiceStoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	boom := errors.New("connection refused")
	records.setErr(boom)
	svc := newTestService(t, records)

	_, err := svc.GetResilience(ctx, 1)
	require.ErrorIs(t, err, boom)

	records.setErr(nil)
	res, err := svc.GetResilience(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.EpisodesAnalyzed)
}

func TestServiceInvalidCurrentMood(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	bad := 11
	_, err := svc.GetRecommendations(context.Background(), 1, &bad)
	assert.ErrorIs(t, err, pattern.ErrInvalidMoodLevel)
}

func TestServicePersistsSummaries(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	summaries := &fakeSummaries{}
	svc := newTestService(t, records, WithSummaryWriter(summaries))

	require.NoError(t, svc.Warm(ctx, 1))

	summaries.mu.Lock()
	defer summaries.mu.Unlock()
	require.Len(t, summaries.saved, 3)
	assert.Contains(t, summaries.saved["cycle"], `"period_kind":"weekly"`)
	assert.Contains(t, summaries.saved, "correlation")
	assert.Contains(t, summaries.saved, "resilience")
}

func TestServiceSummaryFailureIsNotFatal(t *testing.T) {
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, records, WithSummaryWriter(&fakeSummaries{err: errors.New("disk full")}))

	cycle, err := svc.GetCycleSignal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, pattern.PeriodWeekly, cycle.PeriodKind)
}

func TestServiceInvalidateCache(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	seedFridayDip(records, 1)
	svc := newTestService(t, records)
	require.NoError(t, svc.Warm(ctx, 1))

	removed, err := svc.InvalidateCache(1, "cycle")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.InvalidateCache(1, "bogus")
	assert.Error(t, err)

	removed, err = svc.InvalidateCache(1, "all")
	require.NoError(t, err)
	assert.Equal(t, 3, removed, "aggregation, correlation and resilience remain")
}

func TestIngestorInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	svc := newTestService(t, records)
	ingest := NewIngestor(records, svc)

	_, err := ingest.RecordMood(ctx, 1, now.Add(-time.Hour), 0, "")
	assert.ErrorIs(t, err, pattern.ErrInvalidMoodLevel)
	_, err = ingest.RecordHabit(ctx, 1, now.Add(-time.Hour), "  ", true)
	assert.ErrorIs(t, err, ErrInvalidHabitID)

	res, err := svc.GetResilience(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SampleCount)

	rec, err := ingest.RecordMood(ctx, 1, now.Add(-time.Hour), 6, " tired after work ")
	require.NoError(t, err)
	assert.Equal(t, "tired after work", rec.Note)
	_, err = ingest.RecordHabit(ctx, 1, time.Time{}, "walk", true)
	require.NoError(t, err)

	res, err = svc.GetResilience(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SampleCount, "ingestion invalidated the cached index")
}

func TestServiceReadsRecordIngestedThisSecond(t *testing.T) {
	ctx := context.Background()
	records := newFakeStore()
	clock := now.Add(400 * time.Millisecond)
	svc := newTestService(t, records, WithClock(func() time.Time { return clock }))
	ingest := NewIngestor(records, svc)

	for d := 1; d <= 7; d++ {
		_, err := ingest.RecordMood(ctx, 1, now.AddDate(0, 0, -d), 6, "")
		require.NoError(t, err)
	}
	overview, err := svc.GetOverview(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, overview.Summary.DataPoints)

	rec, err := ingest.RecordMood(ctx, 1, time.Time{}, 8, "")
	require.NoError(t, err)
	assert.Equal(t, clock, rec.Timestamp)

	overview, err = svc.GetOverview(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, overview.Summary.DataPoints, "a record stamped now is part of the window")
}
