package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/outbox-router/v1/logger"
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

// FXModule provides *KafkaClient and closes it when the app stops.
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a client.
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates the client and attaches the observer, if any.
func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	client, err := NewClient(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(params.Observer), nil
}

// RegisterKafkaLifecycle closes the reader and flushes the writer on stop.
func RegisterKafkaLifecycle(lc fx.Lifecycle, client *KafkaClient, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing Kafka client", nil, nil)
			return client.Close()
		},
	})
}
