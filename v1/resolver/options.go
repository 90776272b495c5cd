package resolver

import (
	"github.com/Aleph-Alpha/outbox-router/v1/observability"
)

// SubjectStrategy derives a registry subject from a destination topic.
type SubjectStrategy func(topic string) string

// TopicNameStrategy is the default strategy: "<topic>-value".
func TopicNameStrategy(topic string) string {
	return topic + "-value"
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache shares an existing cache instead of creating a private one.
func WithCache(cache *Cache) Option {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithSubjectStrategy replaces TopicNameStrategy.
func WithSubjectStrategy(strategy SubjectStrategy) Option {
	return func(r *Resolver) {
		if strategy != nil {
			r.subject = strategy
		}
	}
}

// WithObserver reports cache hits, misses and fetches to observer.
func WithObserver(observer observability.Observer) Option {
	return func(r *Resolver) {
		r.observer = observer
	}
}
