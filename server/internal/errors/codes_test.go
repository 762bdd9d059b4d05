package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/moodsense/plugin/ai/pattern"
)

func TestFromError(t *testing.T) {
	orderErr := &pattern.DataOrderingError{Kind: "mood", Index: 3, Prev: time.Unix(10, 0), Curr: time.Unix(5, 0)}

	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"data ordering", fmt.Errorf("aggregate: %w", orderErr), ErrCodeDataOrdering, http.StatusInternalServerError},
		{"invalid level", fmt.Errorf("level 0: %w", pattern.ErrInvalidMoodLevel), ErrCodeInvalidArgument, http.StatusBadRequest},
		{"canceled", context.Canceled, ErrCodeContextCanceled, 499},
		{"app error", RateLimitExceeded("slow down"), ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unknown", stderrors.New("disk on fire"), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus())
			assert.True(t, IsCode(appErr, tt.code))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal("failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[INTERNAL] failed: boom", err.Error())
	assert.Equal(t, "[INVALID_ARGUMENT] bad id", InvalidArgument("bad id").Error())

	withCtx := InvalidArgument("bad").WithContext("field", "level")
	assert.Equal(t, "level", withCtx.Context["field"])
	assert.False(t, IsCode(cause, ErrCodeInternal))
}
