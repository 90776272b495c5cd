// Package schema turns Avro schema text into the type descriptors used by
// the coercion engine.
//
// Field types are reduced to a closed set: the Avro primitives, a nullable
// wrapper (a union of null and one other type) and an Unsupported marker for
// everything else (nested records, arrays, maps, enums, fixed, wider unions).
// Parsing only fails for text that is not a valid Avro record schema;
// unsupported field types are reported later, by the coercion engine.
//
// A Definition also owns the compiled goavro codec so a typed payload can be
// written to Kafka as Avro binary.
package schema
