package metrics

import (
	"time"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

// MetricsCollector is the set of measurements the router records.
type MetricsCollector interface {
	// IncrementRecords counts a processed record by transform outcome
	// (transformed, unchanged, dropped, failed).
	IncrementRecords(outcome string)

	// RecordProcessingDuration records how long one record took end to end.
	RecordProcessingDuration(start time.Time, outcome string)

	// IncrementSchemaCache counts schema cache lookups by result (hit, miss).
	IncrementSchemaCache(result string)

	// ObserveOperation implements observability.Observer so the collector can
	// be handed to any component directly.
	ObserveOperation(ctx observability.OperationContext)
}

var _ MetricsCollector = (*Metrics)(nil)
