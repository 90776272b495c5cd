package schema

import "errors"

var (
	// ErrSchemaParse is returned when schema text cannot be turned into a
	// Definition.
	ErrSchemaParse = errors.New("schema: cannot parse schema")

	// ErrEncode is returned when a value does not fit the Avro schema.
	ErrEncode = errors.New("schema: cannot encode value")
)

// IsParseError reports whether err is a schema parse failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrSchemaParse)
}
