package schema_registry

import "errors"

var (
	// ErrSubjectNotFound is returned when the registry has no version for a subject.
	ErrSubjectNotFound = errors.New("schema registry: subject not found")

	// ErrSchemaNotFound is returned when a schema ID is unknown to the registry.
	ErrSchemaNotFound = errors.New("schema registry: schema not found")

	// ErrUnavailable wraps transport failures and unexpected responses.
	ErrUnavailable = errors.New("schema registry: unavailable")
)

// IsNotFoundError reports whether err means the subject or schema does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSubjectNotFound) || errors.Is(err, ErrSchemaNotFound)
}
