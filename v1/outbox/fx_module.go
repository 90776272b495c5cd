package outbox

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/outbox-router/v1/logger"
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/resolver"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
)

// FXModule provides a ready *Router built on the shared resolver. The
// resolver module owns the cache lifecycle, so no hooks are registered here.
var FXModule = fx.Module("outbox",
	fx.Provide(
		NewRouterWithDI,
	),
)

// RouterParams groups the dependencies needed to create a router.
type RouterParams struct {
	fx.In

	Resolver *resolver.Resolver
	Logger   logger.Logger
	Tracer   *tracer.Tracer         `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewRouterWithDI creates a configured router.
func NewRouterWithDI(params RouterParams) *Router {
	return NewRouter(params.Logger,
		WithResolver(params.Resolver),
		WithTracer(params.Tracer),
		WithObserver(params.Observer),
	)
}
