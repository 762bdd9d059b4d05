package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/moodsense/plugin/ai/cache"
	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/plugin/ai/recommend"
	"github.com/hrygo/moodsense/server/service/insight"
)

// Stored timestamps lose their sub-second part, so a record ingested late in
// a second must still fall inside a window read during that same second.
func TestInsightReadsRecordIngestedThisSecond(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for _, now := range []time.Time{
		time.Date(2025, 5, 12, 9, 30, 15, 0, time.UTC),
		time.Date(2025, 5, 12, 9, 30, 16, 700*int(time.Millisecond), time.UTC),
		time.Date(2025, 5, 12, 9, 30, 17, 999*int(time.Millisecond), time.UTC),
	} {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.CleanupInterval = 0
		c := cache.New(cacheCfg, nil)
		svc := insight.NewService(ts, c,
			pattern.NewAnalyzer(pattern.DefaultAnalysisConfig(), nil),
			recommend.NewRanker(recommend.DefaultConfig(), recommend.DefaultCatalog()),
			insight.WithClock(func() time.Time { return now }),
		)
		userID := int32(now.Second())

		_, err := insight.NewIngestor(ts, svc).RecordMood(ctx, userID, time.Time{}, 6, "")
		require.NoError(t, err)

		overview, err := svc.GetOverview(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, overview.Summary.DataPoints, "ingested at %s", now.Format(time.RFC3339Nano))
		c.Close()
	}
}
