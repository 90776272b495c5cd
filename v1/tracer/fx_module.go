package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/outbox-router/v1/logger"
)

// FXModule provides *Tracer and flushes pending spans on shutdown.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// NewClientWithDI adapts NewClient to the shared logger.Logger.
func NewClientWithDI(cfg Config, log logger.Logger) *Tracer {
	return NewClient(cfg, log)
}

// RegisterTracerLifecycle shuts the provider down when the app stops so
// batched spans are exported.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer == nil || tracer.tracer == nil {
				return nil
			}
			tracer.logger.Info("shutting down tracer...", nil, nil)
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
