package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	traceSpan "go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewWithProvider(tp, NewMockLogger(gomock.NewController(t))), recorder
}

func TestStartSpanAndRecordError(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	_, span := tr.StartSpan(context.Background(), "outbox.route")
	tr.SetAttributes(span, map[string]interface{}{"messaging.destination": "orders", "fields": 2})
	tr.RecordErrorOnSpan(span, errors.New("registry down"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "outbox.route", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 2)
}

func TestCarrierRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tr, _ := newRecordingTracer(t)

	ctx, span := tr.StartSpan(context.Background(), "parent")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.NotEmpty(t, carrier["traceparent"])

	restored := tr.SetCarrierOnContext(context.Background(), carrier)
	assert.Equal(t, span.SpanContext().TraceID(), traceSpan.SpanContextFromContext(restored).TraceID())
}

func TestContextWithTraceParent(t *testing.T) {
	ctx := ContextWithTraceParent(context.Background(), "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	sc := traceSpan.SpanContextFromContext(ctx)
	require.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())

	plain := context.Background()
	assert.Equal(t, plain, ContextWithTraceParent(plain, "not-a-traceparent"))
	assert.Equal(t, plain, ContextWithTraceParent(plain, ""))
}
