package observability

import "time"

// Observer receives a notification for every observed operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "resolver" or "router".
	Component string

	// Operation is what was done, e.g. "resolve", "route", "produce".
	Operation string

	// Resource is the primary object of the operation (subject, topic).
	Resource string

	// SubResource adds detail such as the outcome or payload type.
	SubResource string

	Duration time.Duration

	// Error is nil for successful operations.
	Error error

	// Size is the payload size in bytes where that makes sense.
	Size int64

	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation implements Observer.
func (fn ObserverFunc) ObserveOperation(ctx OperationContext) {
	fn(ctx)
}

// Multi fans a notification out to several observers. Nil entries are skipped.
func Multi(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}
