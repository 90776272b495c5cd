package pipeline

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

// Consumer yields outbox messages and commits their offsets.
type Consumer interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Producer writes messages to the topic each message names.
type Producer interface {
	Write(ctx context.Context, msgs ...kafka.Message) error
}

// Transformer is the transform chain run for every record.
type Transformer interface {
	Apply(ctx context.Context, rec *connect.Record) transform.Result
}

// Metrics records per record outcomes.
type Metrics interface {
	IncrementRecords(outcome string)
	RecordProcessingDuration(start time.Time, outcome string)
}

// Logger is the subset of logger.Logger the pipeline needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
