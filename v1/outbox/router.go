package outbox

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/outbox-router/v1/coerce"
	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/resolver"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

const component = "router"

// Logger is the subset of logger.Logger the router needs.
//
//go:generate mockgen -source=router.go -destination=mock_logger.go -package=outbox
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// RegistryFactory creates the registry client during Configure.
type RegistryFactory func(cfg schema_registry.Config) (schema_registry.Registry, error)

// Router turns outbox envelopes into typed records addressed to their
// destination topic. It is safe for concurrent use once configured.
type Router struct {
	logger   Logger
	tracer   *tracer.Tracer
	observer observability.Observer

	newRegistry RegistryFactory
	resolver    *resolver.Resolver
}

var _ transform.Transformation = (*Router)(nil)

// Option configures a Router.
type Option func(*Router)

// WithTracer opens a span per routed envelope.
func WithTracer(t *tracer.Tracer) Option {
	return func(r *Router) { r.tracer = t }
}

// WithObserver reports every routing outcome, and is handed to resolvers
// created by Configure.
func WithObserver(o observability.Observer) Option {
	return func(r *Router) { r.observer = o }
}

// WithResolver uses an already wired resolver; Configure is then optional.
func WithResolver(res *resolver.Resolver) Option {
	return func(r *Router) { r.resolver = res }
}

// WithRegistryFactory replaces schema_registry.NewClient in Configure.
func WithRegistryFactory(f RegistryFactory) Option {
	return func(r *Router) { r.newRegistry = f }
}

// NewRouter creates a router. Without WithResolver it must be configured
// before use.
func NewRouter(logger Logger, opts ...Option) *Router {
	r := &Router{
		logger: logger,
		newRegistry: func(cfg schema_registry.Config) (schema_registry.Registry, error) {
			return schema_registry.NewClient(cfg)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config describes the registry options Configure accepts.
func (r *Router) Config() transform.ConfigDef {
	return configDef
}

// Configure creates the registry client and a fresh schema cache.
func (r *Router) Configure(props map[string]string) error {
	values, err := configDef.Parse(props)
	if err != nil {
		return err
	}

	registry, err := r.newRegistry(RegistryConfig(values))
	if err != nil {
		return fmt.Errorf("outbox: cannot create schema registry client: %w", err)
	}

	if r.resolver != nil {
		_ = r.resolver.Close()
	}
	r.resolver = resolver.New(registry, resolver.WithObserver(r.observer))
	return nil
}

// Close clears the schema cache.
func (r *Router) Close() error {
	if r.resolver == nil {
		return nil
	}
	return r.resolver.Close()
}

// Apply implements transform.Transformation.
func (r *Router) Apply(ctx context.Context, rec *connect.Record) transform.Result {
	return r.Route(ctx, rec)
}

// Route routes one envelope.
//
// A record without a value, or whose envelope lacks Topic, PayloadType or
// Payload, is returned Unchanged. Otherwise the result is either Transformed,
// carrying a new record for the destination topic, or Failed with an error
// wrapping ErrOutboxProcessing. Partial records are never emitted.
func (r *Router) Route(ctx context.Context, rec *connect.Record) transform.Result {
	if rec == nil || rec.Value == nil {
		return transform.Pass(rec)
	}

	env := ReadEnvelope(rec.Value)
	if missing := env.Missing(); len(missing) > 0 {
		r.logger.WarnWithContext(ctx, "outbox envelope is missing required fields, passing record through", nil, map[string]interface{}{
			"missing":   missing,
			"topic":     rec.Topic,
			"partition": rec.Partition,
			"offset":    rec.Offset,
		})
		r.observe(env, "skipped", 0, nil)
		return transform.Pass(rec)
	}

	start := time.Now()
	if env.Trace != nil {
		ctx = tracer.ContextWithTraceParent(ctx, *env.Trace)
	}
	ctx, span := r.tracer.StartSpan(ctx, "outbox.route", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	r.tracer.SetAttributes(span, map[string]interface{}{
		"outbox.topic":        *env.Topic,
		"outbox.payload_type": *env.PayloadType,
		"outbox.id":           deref(env.ID),
	})

	out, err := r.route(ctx, rec, env)
	if err != nil {
		err = fmt.Errorf("%w: topic %s: %w", ErrOutboxProcessing, *env.Topic, err)
		r.tracer.RecordErrorOnSpan(span, err)
		r.logger.ErrorWithContext(ctx, "failed to route outbox envelope", err, map[string]interface{}{
			"id":           deref(env.ID),
			"topic":        *env.Topic,
			"payload_type": *env.PayloadType,
			"offset":       rec.Offset,
		})
		r.observe(env, "failed", time.Since(start), err)
		return transform.Fail(rec, err)
	}

	r.logger.DebugWithContext(ctx, "routed outbox envelope", nil, map[string]interface{}{
		"id":           deref(env.ID),
		"topic":        out.Topic,
		"payload_type": *env.PayloadType,
		"schema_id":    out.ValueSchema.ID,
	})
	r.observe(env, "routed", time.Since(start), nil)
	return transform.Emit(out)
}

func (r *Router) route(ctx context.Context, rec *connect.Record, env Envelope) (*connect.Record, error) {
	if r.resolver == nil {
		return nil, ErrNotConfigured
	}

	def, err := r.resolver.Resolve(ctx, *env.Topic)
	if err != nil {
		return nil, err
	}

	value, err := coerce.Struct(def, *env.Payload)
	if err != nil {
		return nil, err
	}

	return rec.NewRecord(*env.Topic, env.KeyBytes(), value, def, env.Headers()), nil
}

func (r *Router) observe(env Envelope, result string, d time.Duration, err error) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   "route",
		Resource:    deref(env.Topic),
		SubResource: result,
		Duration:    d,
		Error:       err,
		Metadata: map[string]interface{}{
			"payload_type": deref(env.PayloadType),
		},
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
