package coerce

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/schema"
)

// ErrInvalidPayload is returned when the payload text is not a JSON object.
var ErrInvalidPayload = fmt.Errorf("%w: payload is not a JSON object", ErrInvalidValue)

// Decode parses a JSON document keeping numbers as json.Number.
func Decode(payload string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidPayload)
	}
	return v, nil
}

// Struct builds a struct named after def from a JSON object payload. Every
// declared field is looked up by name and coerced; fields absent from the
// payload become Null. Payload keys the schema does not declare are ignored.
func Struct(def *schema.Definition, payload string) (*connect.Struct, error) {
	v, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidPayload, v)
	}

	out := &connect.Struct{Name: def.Name, Fields: make([]connect.Field, 0, len(def.Fields))}
	for _, f := range def.Fields {
		value, err := Coerce(f.Type, obj[f.Name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out.Fields = append(out.Fields, connect.Field{Name: f.Name, Value: value})
	}
	return out, nil
}
