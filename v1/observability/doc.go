// Package observability defines the hook through which router components
// report what they did.
//
// Components such as the schema resolver, the envelope router and the
// pipeline never talk to Prometheus or OpenTelemetry directly. They hold an
// optional Observer and describe every operation with an OperationContext.
// The metrics package ships an Observer backed by Prometheus counters and
// histograms; tests usually plug in a small recording fake.
//
// A nil Observer is always valid and means "observe nothing".
package observability
