// Package tracer sets up OpenTelemetry tracing for the outbox router.
//
// Each routed record gets a span. When the outbox row carries a W3C
// traceparent in its Trace column the span joins that trace, so a request that
// wrote the row and the message that reaches consumers share one trace.
// Trace context travels through Kafka headers on the way out.
package tracer
