package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

// IncrementRecords counts one processed record by outcome.
func (m *Metrics) IncrementRecords(outcome string) {
	m.recordsTotal.WithLabelValues(outcome).Inc()
}

// RecordProcessingDuration observes the time since start by outcome.
func (m *Metrics) RecordProcessingDuration(start time.Time, outcome string) {
	m.processingDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// IncrementSchemaCache counts a schema cache lookup, "hit" or "miss".
func (m *Metrics) IncrementSchemaCache(result string) {
	m.schemaCacheTotal.WithLabelValues(result).Inc()
}

// ObserveOperation records the operation count and duration. Resolver
// lookups additionally feed the schema cache counter through their
// SubResource ("hit" or "miss").
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	status := "success"
	if ctx.Error != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	m.operationDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())

	if ctx.Component == "resolver" && ctx.Operation == "resolve" && ctx.SubResource != "" {
		m.IncrementSchemaCache(ctx.SubResource)
	}
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
