package coerce

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/schema"
)

// Coerce converts a decoded JSON value into a value of type t.
//
// v is a value produced by a json.Decoder with UseNumber: nil, bool,
// json.Number, string, []interface{} or map[string]interface{}. A nil v
// stands for both an absent and an explicit JSON null and always coerces to
// Null, whether or not t is nullable.
func Coerce(t *schema.Type, v interface{}) (connect.Value, error) {
	if t == nil {
		return connect.Null(), fmt.Errorf("%w: missing type", ErrUnsupportedType)
	}

	switch t.Kind {
	case schema.KindNullable:
		if t.Member == nil || t.Member.Kind == schema.KindNull || t.Member.Kind == schema.KindNullable {
			return connect.Null(), fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		if v == nil {
			return connect.Null(), nil
		}
		return Coerce(t.Member, v)
	case schema.KindUnsupported:
		return connect.Null(), fmt.Errorf("%w: %s", ErrUnsupportedType, t.Name)
	}

	if v == nil {
		return connect.Null(), nil
	}

	switch t.Kind {
	case schema.KindString:
		return toString(v)
	case schema.KindInt:
		n, err := toInt(v, 32)
		if err != nil {
			return connect.Null(), err
		}
		return connect.Int32(int32(n)), nil
	case schema.KindLong:
		n, err := toInt(v, 64)
		if err != nil {
			return connect.Null(), err
		}
		return connect.Int64(n), nil
	case schema.KindFloat:
		f, err := toFloat(v, 32)
		if err != nil {
			return connect.Null(), err
		}
		return connect.Float32(float32(f)), nil
	case schema.KindDouble:
		f, err := toFloat(v, 64)
		if err != nil {
			return connect.Null(), err
		}
		return connect.Float64(f), nil
	case schema.KindBoolean:
		return toBool(v)
	case schema.KindBytes:
		return toBytes(v)
	case schema.KindNull:
		return connect.Null(), nil
	default:
		return connect.Null(), fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func toString(v interface{}) (connect.Value, error) {
	switch x := v.(type) {
	case string:
		return connect.String(x), nil
	case json.Number:
		return connect.String(x.String()), nil
	case bool:
		return connect.String(strconv.FormatBool(x)), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(x); err != nil {
			return connect.Null(), fmt.Errorf("%w: string: %v", ErrInvalidValue, err)
		}
		return connect.String(strings.TrimSuffix(buf.String(), "\n")), nil
	}
}

func toInt(v interface{}, bits int) (int64, error) {
	var text string
	switch x := v.(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
	}

	if n, err := strconv.ParseInt(text, 10, bits); err == nil {
		return n, nil
	}

	// fractional or exponent notation: truncate toward zero
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, text)
	}
	f = math.Trunc(f)
	limit := math.Ldexp(1, bits-1)
	if f < -limit || f >= limit {
		return 0, fmt.Errorf("%w: %q overflows a %d-bit integer", ErrInvalidValue, text, bits)
	}
	return int64(f), nil
}

func toFloat(v interface{}, bits int) (float64, error) {
	var text string
	switch x := v.(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
	}

	f, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a %d-bit float", ErrInvalidValue, text, bits)
	}
	return f, nil
}

func toBool(v interface{}) (connect.Value, error) {
	switch x := v.(type) {
	case bool:
		return connect.Boolean(x), nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return connect.Null(), fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, x)
		}
		return connect.Boolean(b), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return connect.Null(), fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, x)
		}
		return connect.Boolean(f != 0), nil
	default:
		return connect.Null(), fmt.Errorf("%w: %T is not a boolean", ErrInvalidValue, v)
	}
}

func toBytes(v interface{}) (connect.Value, error) {
	s, ok := v.(string)
	if !ok {
		return connect.Null(), fmt.Errorf("%w: bytes must be a base64 string, got %T", ErrInvalidValue, v)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return connect.Null(), fmt.Errorf("%w: bytes: %v", ErrInvalidValue, err)
	}
	return connect.Bytes(b), nil
}
