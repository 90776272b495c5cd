package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

func newTestMetrics() *Metrics {
	return NewMetrics(Config{Namespace: "test", ServiceName: "outbox-router"})
}

func TestIncrementRecords(t *testing.T) {
	m := newTestMetrics()

	m.IncrementRecords("transformed")
	m.IncrementRecords("transformed")
	m.IncrementRecords("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("transformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("failed")))
}

func TestObserveOperationCountsStatus(t *testing.T) {
	m := newTestMetrics()

	m.ObserveOperation(observability.OperationContext{Component: "router", Operation: "route", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "router", Operation: "route", Error: errors.New("x")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("router", "route", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("router", "route", "error")))
}

func TestObserveOperationFeedsSchemaCacheCounter(t *testing.T) {
	m := newTestMetrics()

	m.ObserveOperation(observability.OperationContext{Component: "resolver", Operation: "resolve", SubResource: "hit"})
	m.ObserveOperation(observability.OperationContext{Component: "resolver", Operation: "resolve", SubResource: "miss"})
	m.ObserveOperation(observability.OperationContext{Component: "resolver", Operation: "resolve", SubResource: "hit"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.schemaCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.schemaCacheTotal.WithLabelValues("miss")))
}

func TestNewMetricsDefaultsAddress(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}
