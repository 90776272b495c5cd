package resolver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/schema"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
)

const component = "resolver"

// Resolver returns the value schema of a destination topic, fetching it from
// the registry once per subject.
type Resolver struct {
	registry schema_registry.Registry
	cache    *Cache
	subject  SubjectStrategy
	observer observability.Observer

	group singleflight.Group
}

// New creates a resolver backed by registry.
func New(registry schema_registry.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: registry,
		cache:    NewCache(),
		subject:  TopicNameStrategy,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subject returns the registry subject for topic.
func (r *Resolver) Subject(topic string) string {
	return r.subject(topic)
}

// Resolve returns the schema for topic. A cached definition is returned
// without touching the registry. Concurrent misses for one subject share a
// single fetch; a failed fetch is reported to every waiter and not cached.
// The shared fetch does not inherit the caller's cancellation: a caller whose
// ctx ends stops waiting with ErrSchemaFetch wrapping ctx.Err(), while the
// fetch goes on for the remaining waiters.
func (r *Resolver) Resolve(ctx context.Context, topic string) (*schema.Definition, error) {
	subject := r.subject(topic)

	if def, ok := r.cache.Get(subject); ok {
		r.observe(subject, "hit", 0, nil)
		return def, nil
	}
	r.observe(subject, "miss", 0, nil)

	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(subject, func() (interface{}, error) {
		if def, ok := r.cache.Get(subject); ok {
			return def, nil
		}
		def, err := r.fetch(fetchCtx, subject)
		if err != nil {
			return nil, err
		}
		return r.cache.Store(subject, def), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*schema.Definition), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: subject %s: %w", ErrSchemaFetch, subject, ctx.Err())
	}
}

func (r *Resolver) fetch(ctx context.Context, subject string) (*schema.Definition, error) {
	start := time.Now()
	meta, err := r.registry.GetLatestSchema(ctx, subject)
	if err == nil && meta == nil {
		err = fmt.Errorf("no schema returned")
	}
	if err != nil {
		err = fmt.Errorf("%w: subject %s: %w", ErrSchemaFetch, subject, err)
		r.observeFetch(subject, time.Since(start), err)
		return nil, err
	}

	def, err := schema.ParseRegistered(subject, meta.ID, meta.Version, meta.Schema)
	if err != nil {
		err = fmt.Errorf("subject %s: %w", subject, err)
	}
	r.observeFetch(subject, time.Since(start), err)
	return def, err
}

// Close clears the cache.
func (r *Resolver) Close() error {
	r.cache.Clear()
	return nil
}

func (r *Resolver) observe(subject, result string, d time.Duration, err error) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   "resolve",
		Resource:    subject,
		SubResource: result,
		Duration:    d,
		Error:       err,
	})
}

func (r *Resolver) observeFetch(subject string, d time.Duration, err error) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component: component,
		Operation: "fetch",
		Resource:  subject,
		Duration:  d,
		Error:     err,
	})
}
