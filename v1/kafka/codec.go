package kafka

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
)

// EnvelopeName is the struct name given to decoded outbox envelopes.
const EnvelopeName = "OutboxEnvelope"

var (
	// ErrDecode is returned when a consumed message is not a JSON object.
	ErrDecode = errors.New("kafka: cannot decode message")

	// ErrEncode is returned when a record cannot be serialized.
	ErrEncode = errors.New("kafka: cannot encode record")
)

// DecodeRecord converts a consumed message into a record. The value must be
// a JSON object; Debezium envelopes, with or without the schema wrapper, are
// unwrapped to their "after" state. Empty values and deletes yield a record
// without value.
func DecodeRecord(msg kafka.Message) (*connect.Record, error) {
	rec := &connect.Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
	if len(msg.Key) > 0 {
		rec.Key = append([]byte(nil), msg.Key...)
	}
	for _, h := range msg.Headers {
		rec.Headers = rec.Headers.Add(h.Key, string(h.Value))
	}

	if len(bytes.TrimSpace(msg.Value)) == 0 {
		return rec, nil
	}

	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	obj, ok := unwrapDebezium(doc)
	if !ok {
		if doc == nil {
			return rec, nil
		}
		return nil, fmt.Errorf("%w: value is %T, not an object", ErrDecode, doc)
	}
	if obj == nil {
		return rec, nil
	}

	rec.Value = structFromJSON(EnvelopeName, obj)
	return rec, nil
}

// unwrapDebezium returns the row image of a change event. A nil map with ok
// set means the row was deleted.
func unwrapDebezium(doc interface{}) (map[string]interface{}, bool) {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, false
	}

	if payload, hasPayload := obj["payload"]; hasPayload {
		if _, hasSchema := obj["schema"]; hasSchema {
			if payload == nil {
				return nil, true
			}
			if obj, ok = payload.(map[string]interface{}); !ok {
				return nil, false
			}
		}
	}

	if _, hasOp := obj["op"]; hasOp {
		after, hasAfter := obj["after"]
		if _, hasBefore := obj["before"]; hasAfter || hasBefore {
			if after == nil {
				return nil, true
			}
			row, ok := after.(map[string]interface{})
			return row, ok
		}
	}
	return obj, true
}

// structFromJSON keeps scalar JSON fields typed and renders nested objects
// and arrays as compact JSON text. Keys are sorted for a stable layout.
func structFromJSON(name string, obj map[string]interface{}) *connect.Struct {
	s := connect.NewStruct(name)
	for _, k := range sortedKeys(obj) {
		s.Put(k, valueFromJSON(obj[k]))
	}
	return s
}

func valueFromJSON(v interface{}) connect.Value {
	switch x := v.(type) {
	case nil:
		return connect.Null()
	case string:
		return connect.String(x)
	case bool:
		return connect.Boolean(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return connect.Int64(n)
		}
		f, _ := x.Float64()
		return connect.Float64(f)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return connect.Null()
		}
		return connect.String(string(b))
	}
}

// EncodeRecord converts a record into a message for its topic. Records with
// a registry schema are written in the Confluent wire format; all others as
// a JSON object. A record without value becomes a tombstone.
func EncodeRecord(rec *connect.Record) (kafka.Message, error) {
	msg := kafka.Message{
		Topic: rec.Topic,
		Key:   rec.Key,
		Time:  rec.Timestamp,
	}
	for _, h := range rec.Headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: h.Key, Value: []byte(h.Value)})
	}

	if rec.Value == nil {
		return msg, nil
	}

	if def := rec.ValueSchema; def != nil {
		payload, err := def.Encode(rec.Value.Map())
		if err != nil {
			return kafka.Message{}, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		msg.Value = append(schema_registry.EncodeSchemaID(def.ID), payload...)
		return msg, nil
	}

	b, err := json.Marshal(rec.Value.Map())
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	msg.Value = b
	return msg, nil
}
