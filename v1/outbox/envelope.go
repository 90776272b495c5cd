package outbox

import (
	"github.com/Aleph-Alpha/outbox-router/v1/connect"
)

// Field names of the envelope value written by the outbox table connector.
const (
	FieldID          = "Id"
	FieldTopic       = "Topic"
	FieldPayload     = "Payload"
	FieldKey         = "Key"
	FieldPayloadType = "PayloadType"
	FieldTrace       = "Trace"
)

// Headers the router adds to every routed record.
const (
	HeaderID          = "id"
	HeaderTrace       = "trace"
	HeaderPayloadType = "payload-type"
)

// Envelope is the router's view of one outbox row. A nil field was absent
// (or null) on the record value.
type Envelope struct {
	ID          *string
	Topic       *string
	Payload     *string
	Key         *string
	PayloadType *string
	Trace       *string
}

// ReadEnvelope extracts the envelope fields from a record value. Non-string
// fields are rendered as text.
func ReadEnvelope(value *connect.Struct) Envelope {
	return Envelope{
		ID:          text(value, FieldID),
		Topic:       text(value, FieldTopic),
		Payload:     text(value, FieldPayload),
		Key:         text(value, FieldKey),
		PayloadType: text(value, FieldPayloadType),
		Trace:       text(value, FieldTrace),
	}
}

// Missing lists the required fields that are absent.
func (e Envelope) Missing() []string {
	var missing []string
	if e.Topic == nil {
		missing = append(missing, FieldTopic)
	}
	if e.PayloadType == nil {
		missing = append(missing, FieldPayloadType)
	}
	if e.Payload == nil {
		missing = append(missing, FieldPayload)
	}
	return missing
}

// Headers builds the routed record's headers, omitting absent sources.
func (e Envelope) Headers() connect.Headers {
	var h connect.Headers
	if e.ID != nil {
		h = h.Add(HeaderID, *e.ID)
	}
	if e.Trace != nil {
		h = h.Add(HeaderTrace, *e.Trace)
	}
	if e.PayloadType != nil {
		h = h.Add(HeaderPayloadType, *e.PayloadType)
	}
	return h
}

// KeyBytes returns the message key, nil when the envelope has none.
func (e Envelope) KeyBytes() []byte {
	if e.Key == nil {
		return nil
	}
	return []byte(*e.Key)
}

func text(value *connect.Struct, name string) *string {
	s, ok := value.Text(name)
	if !ok {
		return nil
	}
	return &s
}
