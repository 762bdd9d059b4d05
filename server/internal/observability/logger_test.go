package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContextLogsBaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContext(logger, "", "get_cycle", 42)
	require.NotEmpty(t, rc.RequestID)

	rc.Error("request failed", errors.New("boom"), slog.Int(LogFieldStatus, 500))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, rc.RequestID, entry[LogFieldRequestID])
	assert.Equal(t, float64(42), entry[LogFieldUserID])
	assert.Equal(t, "get_cycle", entry[LogFieldOperation])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(500), entry[LogFieldStatus])
}

func TestRequestContextRoundTrip(t *testing.T) {
	rc := NewRequestContext(nil, "req-1", "overview", 1)
	ctx := WithRequestContext(context.Background(), rc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
