package outbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/outbox-router/v1/coerce"
	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/resolver"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

const ordersSchema = `{"type":"record","name":"OrderCreated","namespace":"com.shop","fields":[
	{"name":"amount","type":"double"},
	{"name":"currency","type":"string"}
]}`

type fixture struct {
	registry *schema_registry.MockRegistry
	logger   *MockLogger
	router   *Router
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		registry: schema_registry.NewMockRegistry(ctrl),
		logger:   NewMockLogger(ctrl),
	}
	f.logger.EXPECT().DebugWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	opts = append([]Option{WithResolver(resolver.New(f.registry))}, opts...)
	f.router = NewRouter(f.logger, opts...)
	return f
}

func (f *fixture) expectSchema(subject, text string) *gomock.Call {
	return f.registry.EXPECT().GetLatestSchema(gomock.Any(), subject).
		Return(&schema_registry.Metadata{ID: 12, Version: 1, Schema: text, Subject: subject}, nil)
}

func envelope(fields map[string]string) *connect.Record {
	value := connect.NewStruct("OutboxEvent")
	for _, name := range []string{FieldID, FieldTopic, FieldPayload, FieldKey, FieldPayloadType, FieldTrace} {
		if v, ok := fields[name]; ok {
			value.Put(name, connect.String(v))
		} else {
			value.Put(name, connect.Null())
		}
	}
	return &connect.Record{
		Topic:     "outbox.event.raw",
		Partition: 3,
		Offset:    99,
		Key:       []byte("raw-key"),
		Value:     value,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Headers:   connect.Headers{{Key: "source", Value: "debezium"}},
	}
}

func TestRouteOrderCreated(t *testing.T) {
	f := newFixture(t)
	f.expectSchema("orders-value", ordersSchema)

	in := envelope(map[string]string{
		FieldTopic:       "orders",
		FieldID:          "7",
		FieldPayloadType: "OrderCreated",
		FieldPayload:     `{"amount":10.5,"currency":"USD"}`,
		FieldKey:         "k1",
	})

	res := f.router.Route(context.Background(), in)
	require.Equal(t, transform.Transformed, res.Outcome, "err: %v", res.Err)
	out := res.Record

	assert.Equal(t, "orders", out.Topic)
	assert.Equal(t, []byte("k1"), out.Key)
	assert.Equal(t, 3, out.Partition)
	assert.Equal(t, in.Timestamp, out.Timestamp)
	assert.Equal(t, connect.Headers{{Key: HeaderID, Value: "7"}, {Key: HeaderPayloadType, Value: "OrderCreated"}}, out.Headers)

	require.NotNil(t, out.ValueSchema)
	assert.Equal(t, 12, out.ValueSchema.ID)
	assert.Equal(t, "OrderCreated", out.Value.Name)
	assert.Equal(t, map[string]interface{}{"amount": 10.5, "currency": "USD"}, out.Value.Map())

	encoded, err := out.ValueSchema.Encode(out.Value.Map())
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	// input is untouched
	assert.Equal(t, "outbox.event.raw", in.Topic)
	assert.Equal(t, []byte("raw-key"), in.Key)
}

func TestRouteSecondEnvelopeUsesCachedSchema(t *testing.T) {
	f := newFixture(t)
	f.expectSchema("orders-value", ordersSchema).Times(1)

	for _, id := range []string{"1", "2", "3"} {
		res := f.router.Route(context.Background(), envelope(map[string]string{
			FieldTopic: "orders", FieldID: id, FieldPayloadType: "OrderCreated",
			FieldPayload: `{"amount":1,"currency":"EUR"}`,
		}))
		require.Equal(t, transform.Transformed, res.Outcome)
	}
}

func TestRouteMissingRequiredFieldsPassesThrough(t *testing.T) {
	complete := map[string]string{
		FieldTopic: "orders", FieldID: "7", FieldPayloadType: "OrderCreated", FieldPayload: `{}`,
	}

	for _, missing := range []string{FieldTopic, FieldPayloadType, FieldPayload} {
		t.Run(missing, func(t *testing.T) {
			f := newFixture(t)
			f.logger.EXPECT().WarnWithContext(gomock.Any(), gomock.Any(), nil, gomock.Any()).Times(1)

			fields := make(map[string]string)
			for k, v := range complete {
				if k != missing {
					fields[k] = v
				}
			}
			in := envelope(fields)
			snapshot := *in
			snapshotValue := in.Value.Clone()

			res := f.router.Route(context.Background(), in)

			assert.Equal(t, transform.Unchanged, res.Outcome)
			assert.Same(t, in, res.Record)
			assert.NoError(t, res.Err)
			assert.Equal(t, snapshot, *in)
			assert.True(t, snapshotValue.Equal(in.Value))
		})
	}
}

func TestRouteRecordWithoutValuePassesThrough(t *testing.T) {
	f := newFixture(t)
	in := &connect.Record{Topic: "outbox", Key: []byte("k")}

	res := f.router.Route(context.Background(), in)
	assert.Equal(t, transform.Unchanged, res.Outcome)
	assert.Same(t, in, res.Record)

	res = f.router.Route(context.Background(), nil)
	assert.Equal(t, transform.Unchanged, res.Outcome)
	assert.Nil(t, res.Record)
}

func TestRouteHeadersOmitAbsentTrace(t *testing.T) {
	f := newFixture(t)
	f.expectSchema("orders-value", ordersSchema)

	res := f.router.Route(context.Background(), envelope(map[string]string{
		FieldTopic: "orders", FieldID: "42", FieldPayloadType: "OrderCreated",
		FieldPayload: `{"amount":1,"currency":"EUR"}`,
	}))
	require.Equal(t, transform.Transformed, res.Outcome)

	id, ok := res.Record.Headers.LastWithName(HeaderID)
	require.True(t, ok)
	assert.Equal(t, "42", id)
	pt, ok := res.Record.Headers.LastWithName(HeaderPayloadType)
	require.True(t, ok)
	assert.Equal(t, "OrderCreated", pt)
	_, ok = res.Record.Headers.LastWithName(HeaderTrace)
	assert.False(t, ok)
	assert.Nil(t, res.Record.Key)
}

func TestRouteHeadersIncludeTrace(t *testing.T) {
	f := newFixture(t)
	f.expectSchema("orders-value", ordersSchema)

	res := f.router.Route(context.Background(), envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldTrace: "corr-1",
		FieldPayload: `{"amount":1,"currency":"EUR"}`,
	}))
	require.Equal(t, transform.Transformed, res.Outcome)
	assert.Equal(t, connect.Headers{{Key: HeaderTrace, Value: "corr-1"}, {Key: HeaderPayloadType, Value: "OrderCreated"}}, res.Record.Headers)
}

func TestRouteFailures(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		payload string
		fetch   error
		cause   error
	}{
		{
			name:    "nested record field",
			schema:  `{"type":"record","name":"R","fields":[{"name":"address","type":{"type":"record","name":"A","fields":[{"name":"city","type":"string"}]}}]}`,
			payload: `{"address":{"city":"Berlin"}}`,
			cause:   coerce.ErrUnsupportedType,
		},
		{
			name:    "invalid bytes",
			schema:  `{"type":"record","name":"R","fields":[{"name":"blob","type":"bytes"}]}`,
			payload: `{"blob":"%%%"}`,
			cause:   coerce.ErrInvalidValue,
		},
		{
			name:    "non numeric int",
			schema:  `{"type":"record","name":"R","fields":[{"name":"qty","type":"int"}]}`,
			payload: `{"qty":"many"}`,
			cause:   coerce.ErrInvalidValue,
		},
		{
			name:    "malformed payload",
			schema:  ordersSchema,
			payload: `{"amount":`,
			cause:   coerce.ErrInvalidPayload,
		},
		{
			name:    "malformed schema",
			schema:  `{"type":"record","name":"R","fields":[{"name":"x","type":"nope"}]}`,
			payload: `{}`,
			cause:   resolver.ErrSchemaParse,
		},
		{
			name:    "registry unavailable",
			payload: `{}`,
			fetch:   schema_registry.ErrUnavailable,
			cause:   resolver.ErrSchemaFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.fetch != nil {
				f.registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(nil, tt.fetch)
			} else {
				f.expectSchema("orders-value", tt.schema)
			}
			f.logger.EXPECT().ErrorWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

			in := envelope(map[string]string{
				FieldTopic: "orders", FieldPayloadType: "Any", FieldPayload: tt.payload,
			})
			res := f.router.Route(context.Background(), in)

			require.Equal(t, transform.Failed, res.Outcome)
			assert.Same(t, in, res.Record)
			assert.True(t, IsOutboxProcessingError(res.Err))
			assert.ErrorIs(t, res.Err, tt.cause)
		})
	}
}

func TestRouteWithoutConfigureFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().ErrorWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	res := NewRouter(log).Route(context.Background(), envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldPayload: `{}`,
	}))
	require.Equal(t, transform.Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNotConfigured)
	assert.ErrorIs(t, res.Err, ErrOutboxProcessing)
}

func TestConfigure(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().DebugWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").
		Return(&schema_registry.Metadata{ID: 1, Schema: ordersSchema}, nil).Times(2)

	var got schema_registry.Config
	router := NewRouter(log, WithRegistryFactory(func(cfg schema_registry.Config) (schema_registry.Registry, error) {
		got = cfg
		return registry, nil
	}))

	require.ErrorIs(t, router.Configure(map[string]string{}), transform.ErrInvalidConfig)

	require.NoError(t, router.Configure(map[string]string{
		ConfigRegistryURL:                "https://registry:8081",
		ConfigRegistryUsername:           "svc",
		ConfigRegistryPassword:           "secret",
		ConfigRegistryTruststoreLocation: "/etc/ssl/registry.pem",
	}))
	assert.Equal(t, "https://registry:8081", got.URL)
	assert.Equal(t, "svc", got.Username)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, 10*time.Second, got.Timeout)
	assert.Equal(t, "/etc/ssl/registry.pem", got.TLS.CACertPath)

	in := envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldPayload: `{"amount":1,"currency":"EUR"}`,
	})
	require.Equal(t, transform.Transformed, router.Apply(context.Background(), in).Outcome)
	require.Equal(t, transform.Transformed, router.Apply(context.Background(), in).Outcome)

	// Close empties the cache, so the next envelope fetches again.
	require.NoError(t, router.Close())
	require.Equal(t, transform.Transformed, router.Apply(context.Background(), in).Outcome)

	assert.Contains(t, router.Config().Names(), ConfigRegistryURL)
}

func TestConfigureRegistryError(t *testing.T) {
	router := NewRouter(NewMockLogger(gomock.NewController(t)), WithRegistryFactory(
		func(schema_registry.Config) (schema_registry.Registry, error) { return nil, errors.New("boom") },
	))
	require.Error(t, router.Configure(map[string]string{ConfigRegistryURL: "http://registry"}))
}

func TestRouteKeepsCancellationCause(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := schema_registry.NewClient(schema_registry.Config{URL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().ErrorWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1)
	router := NewRouter(log, WithResolver(resolver.New(client)))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res := router.Route(ctx, envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldPayload: `{"amount":1,"currency":"EUR"}`,
	}))
	require.Equal(t, transform.Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrOutboxProcessing)
	assert.ErrorIs(t, res.Err, resolver.ErrSchemaFetch)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestRouteParentsSpanOnTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f := newFixture(t, WithTracer(tracer.NewWithProvider(tp, nil)))
	f.expectSchema("orders-value", ordersSchema)

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	res := f.router.Route(context.Background(), envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldTrace: traceparent,
		FieldPayload: `{"amount":1,"currency":"EUR"}`,
	}))
	require.Equal(t, transform.Transformed, res.Outcome)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "outbox.route", spans[0].Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestRouteReportsOutcomes(t *testing.T) {
	var mu sync.Mutex
	outcomes := map[string]int{}
	observer := observability.ObserverFunc(func(op observability.OperationContext) {
		if op.Component != component {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		outcomes[op.SubResource]++
	})

	f := newFixture(t, WithObserver(observer))
	f.expectSchema("orders-value", ordersSchema)
	f.logger.EXPECT().WarnWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	f.logger.EXPECT().ErrorWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	ctx := context.Background()
	f.router.Route(ctx, envelope(map[string]string{FieldTopic: "orders"}))
	f.router.Route(ctx, envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldPayload: `{"amount":1,"currency":"EUR"}`,
	}))
	f.router.Route(ctx, envelope(map[string]string{
		FieldTopic: "orders", FieldPayloadType: "OrderCreated", FieldPayload: `{"amount":"x"}`,
	}))

	assert.Equal(t, map[string]int{"skipped": 1, "routed": 1, "failed": 1}, outcomes)
}
