package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/moodsense/plugin/ai/pattern"
	"github.com/hrygo/moodsense/plugin/ai/recommend"
	apperrors "github.com/hrygo/moodsense/server/internal/errors"
)

// RecommendationsResponse is the response body for GET .../insights/recommendations.
type RecommendationsResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// NextActionResponse is the response body for GET .../insights/next-action.
// NextAction is null when nothing is recommended.
type NextActionResponse struct {
	NextAction *recommend.Recommendation `json:"next_action"`
}

// CorrelationsResponse is the response body for GET .../insights/correlations.
type CorrelationsResponse struct {
	Correlations []pattern.CorrelationFinding `json:"correlations"`
}

// InvalidateCacheResponse is the response body for DELETE .../insights/cache.
type InvalidateCacheResponse struct {
	Removed int `json:"removed"`
}

// GetRecommendations returns ranked recommendations.
// GET /api/v1/users/:id/insights/recommendations?current_mood=N
func (s *APIV1Service) GetRecommendations(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	currentMood, err := currentMoodParam(c)
	if err != nil {
		return err
	}

	recs, err := s.Insights.GetRecommendations(c.Request().Context(), id, currentMood)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

// GetNextAction returns the single most pressing recommendation.
// GET /api/v1/users/:id/insights/next-action?current_mood=N
func (s *APIV1Service) GetNextAction(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	currentMood, err := currentMoodParam(c)
	if err != nil {
		return err
	}

	next, err := s.Insights.GetNextAction(c.Request().Context(), id, currentMood)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NextActionResponse{NextAction: next})
}

func currentMoodParam(c echo.Context) (*int, error) {
	raw := c.QueryParam("current_mood")
	if raw == "" {
		return nil, nil
	}
	mood, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.InvalidArgument("current_mood must be an integer")
	}
	return &mood, nil
}

// GetCycleSignal returns the dominant mood rhythm.
// GET /api/v1/users/:id/insights/cycle
func (s *APIV1Service) GetCycleSignal(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	signal, err := s.Insights.GetCycleSignal(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signal)
}

// GetCorrelations returns one finding per tracked habit.
// GET /api/v1/users/:id/insights/correlations
func (s *APIV1Service) GetCorrelations(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	findings, err := s.Insights.GetCorrelations(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if findings == nil {
		findings = []pattern.CorrelationFinding{}
	}
	return c.JSON(http.StatusOK, CorrelationsResponse{Correlations: findings})
}

// GetResilience returns the recovery profile.
// GET /api/v1/users/:id/insights/resilience
func (s *APIV1Service) GetResilience(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	index, err := s.Insights.GetResilience(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, index)
}

// GetOverview returns summary statistics with every analysis.
// GET /api/v1/users/:id/insights/overview
func (s *APIV1Service) GetOverview(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	overview, err := s.Insights.GetOverview(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

// InvalidateCache drops cached insights of one kind or all of them.
// DELETE /api/v1/users/:id/insights/cache?kind=cycle
func (s *APIV1Service) InvalidateCache(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	removed, err := s.Insights.InvalidateCache(id, c.QueryParam("kind"))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "invalid kind")
	}
	return c.JSON(http.StatusOK, InvalidateCacheResponse{Removed: removed})
}
