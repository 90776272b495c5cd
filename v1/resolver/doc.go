// Package resolver resolves the value schema of a destination topic.
//
// The subject is derived from the topic (TopicNameStrategy: "<topic>-value")
// and the latest registered schema for it is fetched and parsed once. The
// parsed definition is kept in a Cache for the lifetime of the process: a
// schema registered later under the same subject is not seen until restart.
//
// Failed fetches and parse failures are never cached, so the next call for
// that subject retries.
//
//	r := resolver.New(registry, resolver.WithObserver(metrics))
//	def, err := r.Resolve(ctx, "orders") // subject "orders-value"
package resolver
