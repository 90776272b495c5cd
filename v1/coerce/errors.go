package coerce

import "errors"

var (
	// ErrUnsupportedType is returned for type descriptors the engine cannot build
	// (records, arrays, maps, enums, fixed, multi-member unions, null-only unions).
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidValue is returned when a JSON value does not parse as its
	// declared primitive type.
	ErrInvalidValue = errors.New("invalid value")
)

// IsUnsupportedTypeError reports whether err was caused by an unsupported type.
func IsUnsupportedTypeError(err error) bool { return errors.Is(err, ErrUnsupportedType) }

// IsInvalidValueError reports whether err was caused by an unparseable value.
func IsInvalidValueError(err error) bool { return errors.Is(err, ErrInvalidValue) }
