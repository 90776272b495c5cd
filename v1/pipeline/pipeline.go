package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	kafkax "github.com/Aleph-Alpha/outbox-router/v1/kafka"
	"github.com/Aleph-Alpha/outbox-router/v1/tracer"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

// ErrRecordFailed is returned by Process for a failed record when no dead
// letter topic is configured.
var ErrRecordFailed = errors.New("pipeline: record failed")

// Pipeline consumes outbox messages, runs the transform chain on each and
// writes the result. A message is committed once its outcome is handled.
type Pipeline struct {
	cfg      Config
	consumer Consumer
	producer Producer
	chain    Transformer
	logger   Logger
	metrics  Metrics
	tracer   *tracer.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records outcomes and durations.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer opens a span per message, parented on the message headers.
func WithTracer(t *tracer.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New creates a pipeline.
func New(cfg Config, consumer Consumer, producer Producer, chain Transformer, logger Logger, opts ...Option) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	p := &Pipeline{
		cfg:      cfg,
		consumer: consumer,
		producer: producer,
		chain:    chain,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches messages until ctx is cancelled or a worker fails. One
// goroutine fetches and hands each message to the worker owning its
// partition. Cancellation is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	queues := make([]chan kafka.Message, p.cfg.Workers)
	for i := range queues {
		queue := make(chan kafka.Message)
		queues[i] = queue
		g.Go(func() error {
			for msg := range queue {
				if err := p.Process(gctx, msg); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		for {
			msg, err := p.consumer.Fetch(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("pipeline: fetch: %w", err)
			}
			select {
			case queues[msg.Partition%len(queues)] <- msg:
			case <-gctx.Done():
				return nil
			}
		}
	})

	p.logger.Info("pipeline started", nil, map[string]interface{}{
		"workers":  p.cfg.Workers,
		"dlq":      p.cfg.DLQTopic,
		"unrouted": p.cfg.UnroutedTopic,
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	p.logger.Info("pipeline stopped", err, nil)
	return err
}

// Process handles a single message and commits it. It returns an error only
// when the message must not be committed: produce or commit failures, or a
// failed record without dead letter topic.
func (p *Pipeline) Process(ctx context.Context, msg kafka.Message) error {
	start := time.Now()
	ctx = kafkax.ExtractTraceContext(ctx, msg)
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.process", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	p.tracer.SetAttributes(span, map[string]interface{}{
		"messaging.source":    msg.Topic,
		"messaging.partition": msg.Partition,
		"messaging.offset":    msg.Offset,
	})

	outcome, err := p.handle(ctx, msg)
	if err != nil {
		p.tracer.RecordErrorOnSpan(span, err)
		p.record(start, transform.Failed.String())
		return err
	}

	if err := p.consumer.Commit(ctx, msg); err != nil {
		p.tracer.RecordErrorOnSpan(span, err)
		return fmt.Errorf("pipeline: commit offset %d of partition %d: %w", msg.Offset, msg.Partition, err)
	}
	p.record(start, outcome)
	return nil
}

func (p *Pipeline) handle(ctx context.Context, msg kafka.Message) (string, error) {
	rec, err := kafkax.DecodeRecord(msg)
	if err != nil {
		return p.fail(ctx, msg, StageDecode, err)
	}

	res := p.chain.Apply(ctx, rec)
	switch res.Outcome {
	case transform.Transformed:
		out, err := kafkax.EncodeRecord(res.Record)
		if err != nil {
			return p.fail(ctx, msg, StageEncode, err)
		}
		out.Headers = kafkax.InjectTraceHeaders(ctx, out.Headers)
		if err := p.producer.Write(ctx, out); err != nil {
			return "", fmt.Errorf("pipeline: produce to %s: %w", out.Topic, err)
		}
		p.logger.DebugWithContext(ctx, "record produced", nil, map[string]interface{}{
			"topic":  out.Topic,
			"offset": msg.Offset,
		})

	case transform.Unchanged:
		if p.cfg.UnroutedTopic == "" {
			p.logger.DebugWithContext(ctx, "record left unchanged, skipping", nil, map[string]interface{}{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			})
			break
		}
		if err := p.producer.Write(ctx, forward(msg, p.cfg.UnroutedTopic, nil)); err != nil {
			return "", fmt.Errorf("pipeline: produce to %s: %w", p.cfg.UnroutedTopic, err)
		}

	case transform.Dropped:
		p.logger.DebugWithContext(ctx, "record dropped", nil, map[string]interface{}{
			"stage":  res.Stage,
			"offset": msg.Offset,
		})

	case transform.Failed:
		return p.fail(ctx, msg, res.Stage, res.Err)
	}

	return res.Outcome.String(), nil
}

// fail dead-letters the original message, or reports ErrRecordFailed when
// there is no dead letter topic. A failure during shutdown is reported as
// cancellation and never dead-lettered.
func (p *Pipeline) fail(ctx context.Context, msg kafka.Message, stage string, cause error) (string, error) {
	if err := ctx.Err(); err != nil {
		// left uncommitted, the record is consumed again after restart
		return "", fmt.Errorf("pipeline: stage %s: %w: %w", stage, err, cause)
	}

	fields := map[string]interface{}{
		"stage":     stage,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	}
	if p.cfg.DLQTopic == "" {
		p.logger.ErrorWithContext(ctx, "record failed and no dead letter topic is configured", cause, fields)
		return "", fmt.Errorf("%w: stage %s: %w", ErrRecordFailed, stage, cause)
	}

	dlq := forward(msg, p.cfg.DLQTopic, []kafka.Header{
		{Key: HeaderError, Value: []byte(cause.Error())},
		{Key: HeaderErrorStage, Value: []byte(stage)},
	})
	if err := p.producer.Write(ctx, dlq); err != nil {
		return "", fmt.Errorf("pipeline: produce to %s: %w", p.cfg.DLQTopic, err)
	}

	fields["dlq"] = p.cfg.DLQTopic
	p.logger.WarnWithContext(ctx, "record sent to dead letter topic", cause, fields)
	return transform.Failed.String(), nil
}

func (p *Pipeline) record(start time.Time, outcome string) {
	if p.metrics == nil {
		return
	}
	p.metrics.IncrementRecords(outcome)
	p.metrics.RecordProcessingDuration(start, outcome)
}

// forward copies msg to topic, keeping key, value, time and headers.
func forward(msg kafka.Message, topic string, extra []kafka.Header) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers)+len(extra))
	headers = append(headers, msg.Headers...)
	headers = append(headers, extra...)
	return kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Time:    msg.Time,
		Headers: headers,
	}
}
