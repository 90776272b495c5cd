package connect

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBoolean
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBoolean:
		return "boolean"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a tagged variant holding one primitive. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	raw  []byte
}

func Null() Value             { return Value{} }
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Int32(v int32) Value     { return Value{kind: KindInt32, num: int64(v)} }
func Int64(v int64) Value     { return Value{kind: KindInt64, num: v} }
func Float32(v float32) Value { return Value{kind: KindFloat32, flt: float64(v)} }
func Float64(v float64) Value { return Value{kind: KindFloat64, flt: v} }
func Bytes(b []byte) Value    { return Value{kind: KindBytes, raw: b} }
func Boolean(b bool) Value {
	if b {
		return Value{kind: KindBoolean, num: 1}
	}
	return Value{kind: KindBoolean}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string when the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInt64 returns the integer for both integer widths.
func (v Value) AsInt64() (int64, bool) {
	return v.num, v.kind == KindInt32 || v.kind == KindInt64
}

// AsFloat64 returns the float for both float widths.
func (v Value) AsFloat64() (float64, bool) {
	return v.flt, v.kind == KindFloat32 || v.kind == KindFloat64
}

func (v Value) AsBool() (bool, bool) { return v.num == 1, v.kind == KindBoolean }

func (v Value) AsBytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// Text renders a non-null value as text: strings verbatim, numbers in their
// shortest decimal form, bytes as standard base64. Null reports false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.num, 10), true
	case KindFloat32:
		return strconv.FormatFloat(v.flt, 'g', -1, 32), true
	case KindFloat64:
		return strconv.FormatFloat(v.flt, 'g', -1, 64), true
	case KindBoolean:
		return strconv.FormatBool(v.num == 1), true
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.raw), true
	default:
		return "", false
	}
}

// Interface returns the Go native form: nil, string, int32, int64, float32,
// float64, bool or []byte.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt32:
		return int32(v.num)
	case KindInt64:
		return v.num
	case KindFloat32:
		return float32(v.flt)
	case KindFloat64:
		return v.flt
	case KindBoolean:
		return v.num == 1
	case KindBytes:
		return v.raw
	default:
		return nil
	}
}

// Equal compares kind and payload. NaN floats are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindFloat32, KindFloat64:
		return v.flt == o.flt || (math.IsNaN(v.flt) && math.IsNaN(o.flt))
	case KindBytes:
		return string(v.raw) == string(o.raw)
	default:
		return v.num == o.num
	}
}

func (v Value) String() string {
	if s, ok := v.Text(); ok {
		return s
	}
	return "null"
}
