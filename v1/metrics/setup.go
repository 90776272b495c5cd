package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns an isolated Prometheus registry and the HTTP server exposing it.
type Metrics struct {
	// Server serves /metrics from Registry.
	Server *http.Server

	// Registry holds every collector of this process.
	Registry *prometheus.Registry

	recordsTotal       *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	schemaCacheTotal   *prometheus.CounterVec
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
}

// NewMetrics registers the router metrics on a fresh registry. Every metric
// carries the constant label service="<cfg.ServiceName>".
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.recordsTotal = createCounterVec(cfg.Namespace, "records_total",
		"Records processed by the transform chain, by outcome", []string{"outcome"})
	m.processingDuration = createHistogramVec(cfg.Namespace, "record_processing_duration_seconds",
		"Time spent processing a single record", []string{"outcome"}, prometheus.DefBuckets)
	m.schemaCacheTotal = createCounterVec(cfg.Namespace, "schema_cache_lookups_total",
		"Schema cache lookups, by result", []string{"result"})
	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Observed component operations", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Duration of observed component operations", []string{"component", "operation"}, prometheus.DefBuckets)

	wrappedRegistry.MustRegister(
		m.recordsTotal,
		m.processingDuration,
		m.schemaCacheTotal,
		m.operationsTotal,
		m.operationDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}
	return m
}
