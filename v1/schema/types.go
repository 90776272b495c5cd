package schema

import "fmt"

// Kind enumerates every type shape the router understands. Anything else
// parses as KindUnsupported so the failure surfaces at coercion time, for
// the one message that needs it.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindString
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindBytes
	KindNull
	// KindNullable is a union of null and exactly one other type.
	KindNullable
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindBytes:
		return "bytes"
	case KindNull:
		return "null"
	case KindNullable:
		return "nullable"
	default:
		return "unsupported"
	}
}

var primitiveKinds = map[string]Kind{
	"string":  KindString,
	"int":     KindInt,
	"long":    KindLong,
	"float":   KindFloat,
	"double":  KindDouble,
	"boolean": KindBoolean,
	"bytes":   KindBytes,
	"null":    KindNull,
}

// logical types goavro encodes through a dedicated union branch name.
var brandedLogicalTypes = map[string]bool{
	"date":             true,
	"time-millis":      true,
	"time-micros":      true,
	"timestamp-millis": true,
	"timestamp-micros": true,
}

// Type is a closed tagged union describing one field type.
type Type struct {
	Kind Kind

	// Member is the non-null branch of a KindNullable type.
	Member *Type

	// Name is the Avro type name for KindUnsupported ("record", "array",
	// "union", a named type reference, ...).
	Name string

	// Logical is the Avro logicalType annotation of a primitive, if any.
	Logical string
}

// Primitive returns the type for a primitive kind.
func Primitive(k Kind) *Type { return &Type{Kind: k} }

// Nullable wraps member in a null union.
func Nullable(member *Type) *Type { return &Type{Kind: KindNullable, Member: member} }

// Unsupported marks a type the coercion engine cannot build.
func Unsupported(name string) *Type { return &Type{Kind: KindUnsupported, Name: name} }

func (t *Type) String() string {
	switch t.Kind {
	case KindNullable:
		return fmt.Sprintf("nullable<%s>", t.Member)
	case KindUnsupported:
		return fmt.Sprintf("unsupported(%s)", t.Name)
	default:
		if t.Logical != "" {
			return t.Kind.String() + "." + t.Logical
		}
		return t.Kind.String()
	}
}

// branch is the name goavro expects when this type is a union member.
func (t *Type) branch() string {
	if t.Logical != "" && brandedLogicalTypes[t.Logical] {
		return t.Kind.String() + "." + t.Logical
	}
	return t.Kind.String()
}

// Field is one declared record field.
type Field struct {
	Name string
	Type *Type

	// HasDefault reports whether the schema declares a default for the field.
	HasDefault bool
}
