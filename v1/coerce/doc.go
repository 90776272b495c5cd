// Package coerce converts untyped JSON values into typed connect values,
// directed by a schema.Type.
//
// Only flat schemas are supported: primitives and nullable primitives.
// Records, arrays, maps, enums and unions with more than one non-null member
// fail with ErrUnsupportedType. A missing or null JSON value coerces to Null
// even for non-nullable fields; if the output schema has no default for such
// a field the failure surfaces later, when the record is encoded.
//
// Coercion is a pure function of the type and the value.
package coerce
