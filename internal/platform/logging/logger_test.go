package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNew_JSONWritesFieldsAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf}).Named("fetcher").With("team", "MIA")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "snapshot rejected", "bytes", 120, "error", errors.New("too short"))

	var record map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	require.Equal(t, "WARN", record["level"])
	require.Equal(t, "fetcher", record["logger"])
	require.Equal(t, "snapshot rejected", record["msg"])
	require.Equal(t, "MIA", record["team"])
	require.EqualValues(t, 120, record["bytes"])
	require.Equal(t, "too short", record["error"])
	require.Equal(t, traceID.String(), record["trace_id"])
	require.Equal(t, spanID.String(), record["span_id"])
	require.True(t, strings.HasPrefix(record["caller"].(string), "logging/logger_test.go"))
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf})

	logger.Info("dropped")
	logger.Debug("dropped too")
	require.Zero(t, buf.Len())
	require.False(t, logger.Enabled(LevelDebug))
	require.True(t, logger.Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	require.NotPanics(t, func() {
		logger.Info("nil receiver falls back to default")
		logger.With("k", "v").Named("x").Error("still fine")
		require.NoError(t, logger.Sync())
	})
}
