// Package metrics exposes the outbox router's Prometheus metrics.
//
// Exported series (names prefixed by Config.Namespace):
//
//	records_total{outcome}                         records by transform outcome
//	record_processing_duration_seconds{outcome}    per-record latency
//	schema_cache_lookups_total{result}             hit / miss
//	operations_total{component,operation,status}   everything reported via observability
//	operation_duration_seconds{component,operation}
//
// *Metrics implements observability.Observer, so it can be passed to the
// resolver, the router and the pipeline as their observer.
package metrics
