package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/moodsense/plugin/ai/cache"
	"github.com/hrygo/moodsense/plugin/ai/metrics"
	apperrors "github.com/hrygo/moodsense/server/internal/errors"
)

// InsightStatsResponse is the response body for GET /api/v1/insights/stats.
type InsightStatsResponse struct {
	Cache        map[cache.Kind]CacheKindStats `json:"cache"`
	Computations []metrics.KindLatency         `json:"computations"`
	TimeRange    string                        `json:"time_range"`
}

// CacheKindStats is the cache activity of one analysis kind.
type CacheKindStats struct {
	cache.KindStats
	HitRate float64 `json:"hit_rate"`
}

// GetInsightStats returns cache counters and computation latencies.
// GET /api/v1/insights/stats?range=24h
func (s *APIV1Service) GetInsightStats(c echo.Context) error {
	timeRange := c.QueryParam("range")
	if timeRange == "" {
		timeRange = "24h"
	}
	since, err := parseTimeRange(timeRange, time.Now())
	if err != nil {
		slog.Warn("invalid time range parameter in stats request", "range", timeRange, "error", err)
		return apperrors.InvalidArgument("invalid time range")
	}

	resp := InsightStatsResponse{
		Cache:        make(map[cache.Kind]CacheKindStats),
		Computations: []metrics.KindLatency{},
		TimeRange:    timeRange,
	}
	for kind, stats := range s.Insights.CacheStats() {
		resp.Cache[kind] = CacheKindStats{KindStats: stats, HitRate: stats.HitRate()}
	}
	if s.Metrics != nil {
		resp.Computations = s.Metrics.ComputationSummary(since)
	}
	return c.JSON(http.StatusOK, resp)
}

// parseTimeRange parses time range string and returns the start time
func parseTimeRange(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case "1h":
		return now.Add(-1 * time.Hour), nil
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time range: %s (valid: 1h, 24h, 7d)", timeRange)
	}
}
