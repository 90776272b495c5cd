package tracer

// Config controls span export.
type Config struct {
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME" default:"outbox-router"`

	AppEnv string `yaml:"app_env" envconfig:"APP_ENV" default:"development"`

	// EnableExport sends spans to an OTLP/HTTP collector. Without it spans are
	// still created (and propagated) but never leave the process.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint overrides OTEL_EXPORTER_OTLP_TRACES_ENDPOINT, e.g. "http://otel:4318".
	Endpoint string `yaml:"endpoint" envconfig:"TRACER_ENDPOINT"`

	// SampleRatio is the fraction of root spans sampled. 0 means always sample.
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"TRACER_SAMPLE_RATIO"`
}
