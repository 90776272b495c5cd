// Package outbox implements the envelope router.
//
// An outbox row arrives as a generic record whose value carries the fields
// Id, Topic, Payload, Key, PayloadType and Trace. The router resolves the
// value schema of Topic, coerces the JSON Payload into a struct of that
// schema and returns a new record addressed to Topic:
//
//	in:  {Topic: "orders", Id: "7", PayloadType: "OrderCreated",
//	      Payload: `{"amount":10.5,"currency":"USD"}`, Key: "k1"}
//	out: topic "orders", key "k1", value OrderCreated{amount: 10.5, currency: "USD"},
//	     headers id=7, payload-type=OrderCreated
//
// Partition and timestamp of the input record are kept. Only the id, trace
// and payload-type headers are set, each one only when its source field is
// present.
//
// Envelopes missing Topic, PayloadType or Payload are logged and passed
// through unchanged. Every other problem fails the record with an error
// wrapping ErrOutboxProcessing and the underlying cause (resolver.ErrSchemaFetch,
// resolver.ErrSchemaParse, coerce.ErrUnsupportedType, coerce.ErrInvalidValue).
//
// When Trace holds a W3C traceparent the routing span is parented on it.
package outbox
