package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/moodsense/server/internal/errors"
	"github.com/hrygo/moodsense/server/internal/observability"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code      apperrors.ErrorCode `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id,omitempty"`
}

// HTTPErrorHandler writes errors as ErrorResponse with the status of their code.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := ErrorResponse{}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		switch {
		case status == http.StatusNotFound:
			resp.Code = apperrors.ErrCodeNotFound
		case status == http.StatusTooManyRequests:
			resp.Code = apperrors.ErrCodeRateLimitExceeded
		case status >= http.StatusInternalServerError:
			resp.Code = apperrors.ErrCodeInternal
		default:
			resp.Code = apperrors.ErrCodeInvalidArgument
		}
		resp.Message = http.StatusText(status)
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		}
	} else {
		appErr := apperrors.FromError(err)
		status = appErr.HTTPStatus()
		resp.Code = appErr.Code
		resp.Message = appErr.Message
	}

	reqCtx, ok := observability.FromContext(c.Request().Context())
	if ok {
		resp.RequestID = reqCtx.RequestID
	}
	if status >= http.StatusInternalServerError {
		if ok {
			reqCtx.Error("request failed", err, slog.String(observability.LogFieldErrorCode, string(resp.Code)))
		} else {
			slog.Error("request failed", "path", c.Path(), "error", err)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
