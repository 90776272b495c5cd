package connect

import (
	"time"

	"github.com/Aleph-Alpha/outbox-router/v1/schema"
)

// Record is one message flowing through the transform chain.
type Record struct {
	Topic     string
	Partition int
	Offset    int64

	// Key is nil when the message has no key.
	Key []byte

	// Value is nil for tombstones and deleted outbox rows.
	Value *Struct

	// ValueSchema is the registry schema the value conforms to. It is only
	// set on records produced by the envelope router.
	ValueSchema *schema.Definition

	Timestamp time.Time
	Headers   Headers
}

// NewRecord derives a record from r that keeps its partition, offset and
// timestamp but carries a new destination, key, value and header set.
func (r *Record) NewRecord(topic string, key []byte, value *Struct, valueSchema *schema.Definition, headers Headers) *Record {
	return &Record{
		Topic:       topic,
		Partition:   r.Partition,
		Offset:      r.Offset,
		Key:         key,
		Value:       value,
		ValueSchema: valueSchema,
		Timestamp:   r.Timestamp,
		Headers:     headers,
	}
}
