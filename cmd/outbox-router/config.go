package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	kafkax "github.com/Aleph-Alpha/outbox-router/v1/kafka"
	"github.com/Aleph-Alpha/outbox-router/v1/logger"
	"github.com/Aleph-Alpha/outbox-router/v1/metrics"
	"github.com/Aleph-Alpha/outbox-router/v1/pipeline"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
)

// EnvPrefix namespaces the process environment. Fields are also read from
// their bare envconfig names, so KAFKA_BROKERS works as well as
// ROUTER_KAFKA_KAFKA_BROKERS.
const EnvPrefix = "ROUTER"

// TransformsEnvPrefix holds the transform chain, see transforms.PropsFromEnv.
const TransformsEnvPrefix = "ROUTER_TRANSFORMS"

// DefaultTransforms routes every envelope and nothing else.
var DefaultTransforms = map[string]string{
	"transforms":             "outbox",
	"transforms.outbox.type": "OutboxEventRouter",
}

// Config is the complete process configuration.
type Config struct {
	Logger   logger.Config
	Metrics  metrics.Config
	Tracer   tracer.Config
	Registry schema_registry.Config
	Kafka    kafkax.Config
	Pipeline pipeline.Config
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}
