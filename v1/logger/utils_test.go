package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(tracing bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), tracing), logs
}

func TestInfoIncludesErrorAndFields(t *testing.T) {
	l, logs := newObserved(false)

	l.Info("schema cached", errors.New("boom"), map[string]interface{}{"subject": "orders-value"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "schema cached", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "orders-value", ctx["subject"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLaterFieldMapsOverrideEarlier(t *testing.T) {
	l, logs := newObserved(false)

	l.Warn("skip", nil, map[string]interface{}{"topic": "a"}, map[string]interface{}{"topic": "b"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "b", logs.All()[0].ContextMap()["topic"])
}

func TestWithContextAddsTraceFields(t *testing.T) {
	l, logs := newObserved(true)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.ErrorWithContext(ctx, "route failed", nil, nil)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestWithContextWithoutTracingOmitsTraceFields(t *testing.T) {
	l, logs := newObserved(false)

	l.InfoWithContext(context.Background(), "hello", nil)

	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
