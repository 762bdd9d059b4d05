package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"MOODSENSE_LOOKBACK_DAYS",
		"MOODSENSE_MIN_WEEKLY_SAMPLES",
		"MOODSENSE_MIN_CORRELATION_SAMPLES",
		"MOODSENSE_PREWARM_INTERVAL",
		"MOODSENSE_ANALYSIS_TTL",
		"MOODSENSE_RECOMMENDATION_TTL",
		"MOODSENSE_CACHE_MAX_ENTRIES",
		"MOODSENSE_TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestValidateDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := &Profile{Mode: "bogus", Data: dir}
	p.FromEnv()
	require.NoError(t, p.Validate())

	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, filepath.Join(dir, "moodsense_demo.db"), p.DSN)
	assert.Equal(t, 30, p.LookbackDays)
	assert.Equal(t, 3, p.MinWeeklySamples)
	assert.Equal(t, 5, p.MinCorrelationSamples)
	assert.Equal(t, 20*time.Minute, p.AnalysisTTL)
	assert.Equal(t, 3*time.Minute, p.RecommendationTTL)
	assert.Equal(t, 1000, p.CacheMaxEntries)
	assert.Equal(t, time.UTC, p.Location())
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOODSENSE_LOOKBACK_DAYS", "60")
	t.Setenv("MOODSENSE_MIN_WEEKLY_SAMPLES", "4")
	t.Setenv("MOODSENSE_PREWARM_INTERVAL", "15m")
	t.Setenv("MOODSENSE_RECOMMENDATION_TTL", "not-a-duration")
	t.Setenv("MOODSENSE_TIMEZONE", "Europe/Berlin")

	p := &Profile{RecommendationTTL: time.Minute}
	p.FromEnv()

	assert.Equal(t, 60, p.LookbackDays)
	assert.Equal(t, 4, p.MinWeeklySamples)
	assert.Equal(t, 15*time.Minute, p.PrewarmInterval)
	assert.Equal(t, time.Minute, p.RecommendationTTL, "invalid values keep the previous setting")
	assert.Equal(t, "Europe/Berlin", p.Location().String())
}

func TestValidateRejectsBadInput(t *testing.T) {
	clearEnv(t)
	t.Run("missing data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: filepath.Join(t.TempDir(), "missing")}
		assert.Error(t, p.Validate())
	})
	t.Run("unknown timezone", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: t.TempDir(), Timezone: "Mars/Olympus"}
		assert.Error(t, p.Validate())
	})
}
