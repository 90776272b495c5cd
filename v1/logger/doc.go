// Package logger provides the structured logger used across the outbox router.
//
// It wraps Uber's zap with a small, uniform call shape:
//
//	log.Info("message", err, map[string]interface{}{"key": "value"})
//
// The error argument may be nil and any number of field maps may follow.
// The *WithContext variants additionally attach trace_id and span_id taken
// from the OpenTelemetry span stored in the context, which lets log lines be
// joined with the routing spans emitted by the tracer package.
//
// Configuration comes from environment variables:
//
//	ZAP_LOGGER_LEVEL=debug
//	LOGGER_SERVICE_NAME=outbox-router
//	LOGGER_ENABLE_TRACING=true
//	LOGGER_DEVELOPMENT=false
//
// With fx, include logger.FXModule and provide a logger.Config. All methods are
// safe for concurrent use.
package logger
