package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/moodsense/server/internal/errors"
	"github.com/hrygo/moodsense/server/service/insight"
	"github.com/hrygo/moodsense/store"
)

// CreateMoodRecordRequest is the request body for POST .../moods.
type CreateMoodRecordRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Level     int        `json:"level"`
	Note      string     `json:"note,omitempty"`
}

// CreateHabitEventRequest is the request body for POST .../habits.
type CreateHabitEventRequest struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	HabitID   string     `json:"habit_id"`
	Completed *bool      `json:"completed,omitempty"` // defaults to true
}

// MoodRecordResponse is the response body for POST .../moods.
type MoodRecordResponse struct {
	ID        int64     `json:"id"`
	UserID    int32     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Level     int       `json:"level"`
	Note      string    `json:"note,omitempty"`
}

// HabitEventResponse is the response body for POST .../habits.
type HabitEventResponse struct {
	ID        int64     `json:"id"`
	UserID    int32     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	HabitID   string    `json:"habit_id"`
	Completed bool      `json:"completed"`
}

func convertMoodRecord(r *store.MoodRecord) MoodRecordResponse {
	return MoodRecordResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Timestamp: r.Timestamp,
		Level:     r.Level,
		Note:      r.Note,
	}
}

func convertHabitEvent(e *store.HabitEvent) HabitEventResponse {
	return HabitEventResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Timestamp: e.Timestamp,
		HabitID:   e.HabitID,
		Completed: e.Completed,
	}
}

// CreateMoodRecord stores a mood rating and invalidates the user's insights.
// POST /api/v1/users/:id/moods
func (s *APIV1Service) CreateMoodRecord(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req CreateMoodRecordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.InvalidArgument("invalid request body")
	}

	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	record, err := s.Ingestor.RecordMood(c.Request().Context(), id, ts, req.Level, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, convertMoodRecord(record))
}

// CreateHabitEvent stores a habit event and invalidates the user's insights.
// POST /api/v1/users/:id/habits
func (s *APIV1Service) CreateHabitEvent(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req CreateHabitEventRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.InvalidArgument("invalid request body")
	}

	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	event, err := s.Ingestor.RecordHabit(c.Request().Context(), id, ts, req.HabitID, completed)
	if errors.Is(err, insight.ErrInvalidHabitID) {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "habit_id is required")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, convertHabitEvent(event))
}
