package kafka

import "time"

// Default values for the consumer and producer.
const (
	DefaultMinBytes     = 1
	DefaultMaxBytes     = 10e6
	DefaultMaxWait      = 500 * time.Millisecond
	DefaultRequiredAcks = -1
	DefaultMaxAttempts  = 10
	DefaultWriteTimeout = 10 * time.Second
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 10 * time.Millisecond
	DefaultQueueSize    = 1000
)

// Config holds the connection settings for the input topic consumer and the
// producer used for routed, unrouted and dead-lettered records.
type Config struct {
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS" validate:"required,min=1"`

	// Topic is the outbox topic the router consumes.
	Topic string `yaml:"topic" envconfig:"KAFKA_TOPIC" validate:"required"`

	GroupID string `yaml:"group_id" envconfig:"KAFKA_GROUP_ID" default:"outbox-router"`

	// StartOffset applies when the group has no committed offset:
	// "first" or "last".
	StartOffset string `yaml:"start_offset" envconfig:"KAFKA_START_OFFSET" default:"first" validate:"oneof=first last"`

	MinBytes      int           `yaml:"min_bytes" envconfig:"KAFKA_MIN_BYTES"`
	MaxBytes      int           `yaml:"max_bytes" envconfig:"KAFKA_MAX_BYTES"`
	MaxWait       time.Duration `yaml:"max_wait" envconfig:"KAFKA_MAX_WAIT"`
	QueueCapacity int           `yaml:"queue_capacity" envconfig:"KAFKA_QUEUE_CAPACITY"`

	// RequiredAcks: 0 none, 1 leader, -1 all in-sync replicas.
	RequiredAcks int           `yaml:"required_acks" envconfig:"KAFKA_REQUIRED_ACKS"`
	MaxAttempts  int           `yaml:"max_attempts" envconfig:"KAFKA_MAX_ATTEMPTS"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"KAFKA_WRITE_TIMEOUT"`
	BatchSize    int           `yaml:"batch_size" envconfig:"KAFKA_BATCH_SIZE"`
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"KAFKA_BATCH_TIMEOUT"`

	// CompressionCodec is one of "", "gzip", "snappy", "lz4", "zstd".
	CompressionCodec string `yaml:"compression_codec" envconfig:"KAFKA_COMPRESSION" validate:"omitempty,oneof=gzip snappy lz4 zstd"`

	// Balancer picks the partition of produced records: "hash" keeps records
	// with the same key on one partition, "least_bytes" spreads load.
	Balancer string `yaml:"balancer" envconfig:"KAFKA_BALANCER" default:"hash" validate:"omitempty,oneof=hash least_bytes"`

	TLS  TLSConfig
	SASL SASLConfig
}

// TLSConfig configures TLS towards the brokers.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT"`
	ClientCertPath     string `yaml:"client_cert_path" envconfig:"KAFKA_TLS_CLIENT_CERT"`
	ClientKeyPath      string `yaml:"client_key_path" envconfig:"KAFKA_TLS_CLIENT_KEY"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig configures SASL authentication.
type SASLConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`

	// Mechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM" default:"PLAIN"`
	Username  string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`
	Password  string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}

func (c Config) withDefaults() Config {
	if c.MinBytes == 0 {
		c.MinBytes = DefaultMinBytes
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueSize
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = DefaultRequiredAcks
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.GroupID == "" {
		c.GroupID = "outbox-router"
	}
	return c
}
