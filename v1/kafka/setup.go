package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

const component = "kafka"

// Logger is the subset of logger.Logger the client needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// KafkaClient consumes the outbox topic as a member of a consumer group and
// produces to arbitrary topics. Offsets are committed explicitly.
type KafkaClient struct {
	cfg      Config
	logger   Logger
	observer observability.Observer

	reader *kafka.Reader
	writer *kafka.Writer
	dialer *kafka.Dialer

	closeOnce sync.Once
	closeErr  error
}

// NewClient creates the reader and writer. No connection is opened until
// the first fetch or write.
func NewClient(cfg Config, logger Logger) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	dialer := &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}

	k := &KafkaClient{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
		reader: createReader(cfg, dialer, logger),
		writer: createWriter(cfg, tlsConfig, mechanism, logger),
	}

	logger.Info("Kafka client initialized", nil, map[string]interface{}{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
		"group":   cfg.GroupID,
	})
	return k, nil
}

// WithObserver attaches an observer notified of every fetch, write and commit.
func (k *KafkaClient) WithObserver(observer observability.Observer) *KafkaClient {
	k.observer = observer
	return k
}

// Topic returns the consumed topic.
func (k *KafkaClient) Topic() string { return k.cfg.Topic }

// Fetch blocks until the next message of the outbox topic is available. The
// message is not committed.
func (k *KafkaClient) Fetch(ctx context.Context) (kafka.Message, error) {
	start := time.Now()
	msg, err := k.reader.FetchMessage(ctx)
	k.observe("consume", k.cfg.Topic, time.Since(start), int64(len(msg.Value)), err)
	return msg, err
}

// Commit commits the offsets of msgs for the consumer group.
func (k *KafkaClient) Commit(ctx context.Context, msgs ...kafka.Message) error {
	start := time.Now()
	err := k.reader.CommitMessages(ctx, msgs...)
	k.observe("commit", k.cfg.Topic, time.Since(start), 0, err)
	return err
}

// Write produces msgs synchronously. Each message carries its own topic.
func (k *KafkaClient) Write(ctx context.Context, msgs ...kafka.Message) error {
	start := time.Now()
	err := k.writer.WriteMessages(ctx, msgs...)

	var size int64
	for _, m := range msgs {
		size += int64(len(m.Value))
	}
	var topic string
	if len(msgs) == 1 {
		topic = msgs[0].Topic
	}
	k.observe("produce", topic, time.Since(start), size, err)
	return err
}

// Close closes the reader and flushes the writer. Safe to call twice.
func (k *KafkaClient) Close() error {
	k.closeOnce.Do(func() {
		k.closeErr = errors.Join(k.reader.Close(), k.writer.Close())
	})
	return k.closeErr
}

func (k *KafkaClient) observe(operation, topic string, d time.Duration, size int64, err error) {
	if k.observer == nil {
		return
	}
	k.observer.ObserveOperation(observability.OperationContext{
		Component: component,
		Operation: operation,
		Resource:  topic,
		Duration:  d,
		Size:      size,
		Error:     err,
	})
}

func createErrorLogger(logger Logger) kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		logger.Error("Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	}
}

func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, logger Logger) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		ErrorLogger:  createErrorLogger(logger),
		Transport: &kafka.Transport{
			TLS:  tlsConfig,
			SASL: mechanism,
		},
	}

	switch cfg.Balancer {
	case "least_bytes":
		w.Balancer = &kafka.LeastBytes{}
	default:
		w.Balancer = &kafka.Hash{}
	}

	switch cfg.CompressionCodec {
	case "gzip":
		w.Compression = compress.Gzip
	case "snappy":
		w.Compression = compress.Snappy
	case "lz4":
		w.Compression = compress.Lz4
	case "zstd":
		w.Compression = compress.Zstd
	}

	return w
}

func createReader(cfg Config, dialer *kafka.Dialer, logger Logger) *kafka.Reader {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == "last" {
		startOffset = kafka.LastOffset
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:       cfg.Brokers,
		Topic:         cfg.Topic,
		GroupID:       cfg.GroupID,
		MinBytes:      cfg.MinBytes,
		MaxBytes:      cfg.MaxBytes,
		MaxWait:       cfg.MaxWait,
		QueueCapacity: cfg.QueueCapacity,
		StartOffset:   startOffset,
		// commits are explicit, after the outcome of a message is handled
		CommitInterval: 0,
		Dialer:         dialer,
		ErrorLogger:    createErrorLogger(logger),
	})
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
