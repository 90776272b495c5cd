// Package transforms holds the header utilities that run next to the outbox
// router, and the chain that runs them in order.
//
//   - ExtractHeader copies one header into a single-field value.
//   - ExtractMultipleHeaders builds an UpdatedRecord from several headers
//     plus the original value as JSON.
//   - UpdateProcessedAt builds the {Id, ProcessedAt} update for the outbox
//     row whose id header the record carries.
//
// Chains are built from Kafka Connect style properties by a Registry:
//
//	reg := transforms.NewRegistry(log)
//	chain, err := reg.Build(map[string]string{
//	    "transforms":                           "outbox",
//	    "transforms.outbox.type":               "OutboxEventRouter",
//	    "transforms.outbox.schema.registry.url": "http://registry:8081",
//	})
package transforms
