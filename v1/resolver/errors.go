package resolver

import (
	"errors"

	"github.com/Aleph-Alpha/outbox-router/v1/schema"
)

var (
	// ErrSchemaFetch is returned when the registry is unreachable, times out
	// or has no schema for the subject.
	ErrSchemaFetch = errors.New("resolver: cannot fetch schema")

	// ErrSchemaParse is returned when the registry's schema text does not parse.
	ErrSchemaParse = schema.ErrSchemaParse
)

// IsFetchError reports whether err is a registry fetch failure.
func IsFetchError(err error) bool { return errors.Is(err, ErrSchemaFetch) }

// IsParseError reports whether err is a schema parse failure.
func IsParseError(err error) bool { return errors.Is(err, ErrSchemaParse) }
