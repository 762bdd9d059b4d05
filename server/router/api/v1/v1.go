package v1

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/moodsense/internal/profile"
	"github.com/hrygo/moodsense/plugin/ai/metrics"
	apperrors "github.com/hrygo/moodsense/server/internal/errors"
	"github.com/hrygo/moodsense/server/middleware"
	"github.com/hrygo/moodsense/server/service/insight"
)

// APIV1Service serves the JSON API.
type APIV1Service struct {
	Profile     *profile.Profile
	Insights    *insight.Service
	Ingestor    *insight.Ingestor
	Metrics     *metrics.Exporter
	RateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service. A nil exporter disables the stats
// endpoint's computation summary.
func NewAPIV1Service(profile *profile.Profile, insights *insight.Service, ingestor *insight.Ingestor, exporter *metrics.Exporter) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Insights:    insights,
		Ingestor:    ingestor,
		Metrics:     exporter,
		RateLimiter: middleware.NewRateLimiter(profile.RateLimitPerSecond, 2*int(profile.RateLimitPerSecond)),
	}
}

// Register mounts the API routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/insights/stats", s.GetInsightStats)

	users := v1.Group("/users/:id", s.RateLimiter.Middleware())
	users.GET("/insights/recommendations", s.GetRecommendations)
	users.GET("/insights/next-action", s.GetNextAction)
	users.GET("/insights/cycle", s.GetCycleSignal)
	users.GET("/insights/correlations", s.GetCorrelations)
	users.GET("/insights/resilience", s.GetResilience)
	users.GET("/insights/overview", s.GetOverview)
	users.DELETE("/insights/cache", s.InvalidateCache)
	users.POST("/moods", s.CreateMoodRecord)
	users.POST("/habits", s.CreateHabitEvent)
}

// userID parses the ":id" path parameter.
func userID(c echo.Context) (int32, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument("invalid user id: " + raw)
	}
	return int32(id), nil
}
