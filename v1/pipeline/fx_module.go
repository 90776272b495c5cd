package pipeline

import (
	"context"

	"go.uber.org/fx"

	kafkax "github.com/Aleph-Alpha/outbox-router/v1/kafka"
	"github.com/Aleph-Alpha/outbox-router/v1/logger"
	"github.com/Aleph-Alpha/outbox-router/v1/metrics"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
)

// FXModule provides *Pipeline and runs it for the lifetime of the app. A
// Transformer must be provided by the application. When the pipeline stops
// with an error the app is shut down with exit code 1.
var FXModule = fx.Module("pipeline",
	fx.Provide(
		NewPipelineWithDI,
	),
	fx.Invoke(RegisterPipelineLifecycle),
)

// PipelineParams groups the dependencies needed to create a pipeline.
type PipelineParams struct {
	fx.In

	Config  Config
	Client  *kafkax.KafkaClient
	Chain   Transformer
	Logger  logger.Logger
	Metrics metrics.MetricsCollector `optional:"true"`
	Tracer  *tracer.Tracer           `optional:"true"`
}

// NewPipelineWithDI wires the Kafka client as consumer and producer.
func NewPipelineWithDI(params PipelineParams) *Pipeline {
	opts := []Option{WithTracer(params.Tracer)}
	if params.Metrics != nil {
		opts = append(opts, WithMetrics(params.Metrics))
	}
	return New(params.Config, params.Client, params.Client, params.Chain, params.Logger, opts...)
}

// RegisterPipelineLifecycle starts Run on app start and waits for it to
// drain on stop.
func RegisterPipelineLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, p *Pipeline, client *kafkax.KafkaClient, log logger.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if p.cfg.EnsureTopics {
				var topics []kafkax.TopicSpec
				for _, name := range []string{p.cfg.DLQTopic, p.cfg.UnroutedTopic} {
					if name != "" {
						topics = append(topics, kafkax.TopicSpec{Name: name})
					}
				}
				if err := client.EnsureTopics(startCtx, topics...); err != nil {
					cancel()
					return err
				}
			}

			go func() {
				defer close(done)
				if err := p.Run(ctx); err != nil {
					log.Error("pipeline failed, shutting down", err, nil)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
