package outbox

import "errors"

var (
	// ErrOutboxProcessing wraps every hard failure of a single envelope:
	// schema fetch or parse errors, payload decoding and field coercion.
	ErrOutboxProcessing = errors.New("outbox: processing failed")

	// ErrNotConfigured is returned when Apply runs before Configure.
	ErrNotConfigured = errors.New("outbox: router is not configured")
)

// IsOutboxProcessingError reports whether err is a routing failure.
func IsOutboxProcessingError(err error) bool {
	return errors.Is(err, ErrOutboxProcessing)
}
