// Package kafka connects the router to Apache Kafka using segmentio/kafka-go.
//
// KafkaClient consumes the outbox topic as a consumer group member with
// explicit commits, and produces to any topic: every written message carries
// its own destination.
//
//	client, err := kafka.NewClient(kafka.Config{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "outbox.event.raw",
//	    GroupID: "outbox-router",
//	}, log)
//	msg, err := client.Fetch(ctx)
//	rec, err := kafka.DecodeRecord(msg)
//	// ... transform rec ...
//	out, err := kafka.EncodeRecord(routed)
//	err = client.Write(ctx, out)
//	err = client.Commit(ctx, msg)
//
// Message values:
//
//   - Consumed outbox messages are JSON objects, either the plain row or a
//     Debezium change event (optionally inside the {"schema","payload"}
//     wrapper), which is unwrapped to its "after" image.
//   - Records with a registry schema are written in the Confluent wire format:
//     0x0, the 4-byte schema ID, then the Avro binary body.
//   - All other records are written as JSON objects.
//
// Trace context travels in message headers; see InjectTraceHeaders and
// ExtractTraceContext.
package kafka
