package resolver

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
)

// FXModule provides *Resolver and clears its cache on shutdown. It needs a
// schema_registry.Registry; an observability.Observer is used when present.
var FXModule = fx.Module("resolver",
	fx.Provide(
		NewResolverWithDI,
	),
	fx.Invoke(RegisterResolverLifecycle),
)

// ResolverParams groups the dependencies needed to create a resolver.
type ResolverParams struct {
	fx.In

	Registry schema_registry.Registry
	Observer observability.Observer `optional:"true"`
}

// NewResolverWithDI creates a resolver using the TopicNameStrategy.
func NewResolverWithDI(params ResolverParams) *Resolver {
	return New(params.Registry, WithObserver(params.Observer))
}

// RegisterResolverLifecycle clears the schema cache when the app stops.
func RegisterResolverLifecycle(lc fx.Lifecycle, r *Resolver) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})
}
