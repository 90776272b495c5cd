// Command outbox-router consumes outbox table change events from Kafka,
// routes each envelope to its destination topic as schema-registry encoded
// Avro and commits the source offset once the outcome is handled.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	kafkax "github.com/Aleph-Alpha/outbox-router/v1/kafka"
	"github.com/Aleph-Alpha/outbox-router/v1/logger"
	"github.com/Aleph-Alpha/outbox-router/v1/metrics"
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/outbox"
	"github.com/Aleph-Alpha/outbox-router/v1/pipeline"
	"github.com/Aleph-Alpha/outbox-router/v1/resolver"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
	"github.com/Aleph-Alpha/outbox-router/v1/transforms"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "outbox-router:", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(cfg.Logger, cfg.Metrics, cfg.Tracer, cfg.Registry, cfg.Kafka, cfg.Pipeline),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		schema_registry.FXModule,
		resolver.FXModule,
		outbox.FXModule,
		kafkax.FXModule,
		fx.Provide(NewChainWithDI),
		pipeline.FXModule,
	)
	app.Run()
}

// ChainParams groups the dependencies needed to build the transform chain.
type ChainParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Router    *outbox.Router
	Logger    logger.Logger
	Tracer    *tracer.Tracer         `optional:"true"`
	Observer  observability.Observer `optional:"true"`
}

// NewChainWithDI builds the chain from ROUTER_TRANSFORMS* variables, or the
// single outbox router when none are set. OutboxEventRouter entries share
// the container's router and resolver cache.
func NewChainWithDI(params ChainParams) (pipeline.Transformer, error) {
	registry := transforms.NewRegistry(params.Logger,
		outbox.WithTracer(params.Tracer),
		outbox.WithObserver(params.Observer),
	)
	registry.Use(transforms.TypeOutboxEventRouter, params.Router)

	props := transforms.PropsFromEnv(TransformsEnvPrefix, os.Environ())
	if len(props) == 0 {
		props = DefaultTransforms
	}

	chain, err := registry.Build(props)
	if err != nil {
		return nil, fmt.Errorf("building transform chain: %w", err)
	}
	params.Logger.Info("transform chain ready", nil, map[string]interface{}{
		"transforms": chain.Aliases(),
	})

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return chain.Close()
		},
	})
	return chain, nil
}
