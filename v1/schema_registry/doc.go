// Package schema_registry is a small client for Confluent compatible schema
// registries.
//
// The router only needs GetLatestSchema: it resolves the value schema of a
// destination topic by subject name. GetSchemaByID and RegisterSchema exist
// for tooling and tests. Every call takes a context; cancellation and the
// configured timeout surface as ErrUnavailable, a missing subject as
// ErrSubjectNotFound.
//
//	registry, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",
//	    Password: "password",
//	})
//	meta, err := registry.GetLatestSchema(ctx, "orders-value")
//
// Records written by the router use the Confluent wire format
// ([0x0][schema id, 4 bytes big-endian][avro payload]); EncodeSchemaID and
// DecodeSchemaID build and split that header.
package schema_registry
