// Package pipeline runs the transform chain over the outbox topic.
//
// For every consumed message:
//
//  1. the message is decoded into a record (kafka.DecodeRecord),
//  2. the chain is applied,
//  3. the outcome is handled: Transformed records are produced to their
//     topic, Unchanged ones copied to the unrouted topic (or skipped),
//     Dropped ones skipped and Failed ones copied to the dead letter topic,
//  4. the message offset is committed.
//
// A message whose outcome cannot be handled (a produce error, or a failure
// without dead letter topic) is not committed and stops the pipeline, so it
// is consumed again after restart. Delivery is at least once.
//
// Messages are spread over Config.Workers goroutines by partition, so records
// of one partition are processed and committed in order.
package pipeline
