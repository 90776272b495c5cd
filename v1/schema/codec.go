package schema

import (
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// Native converts plain field values (nil, string, int32, int64, float32,
// float64, bool, []byte) into the form goavro encodes: nullable members are
// wrapped in their union branch and nil values of non-nullable fields are
// left out so the schema default applies.
func (d *Definition) Native(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		switch {
		case f.Type.Kind == KindNullable && v == nil:
			out[f.Name] = nil
		case f.Type.Kind == KindNullable:
			out[f.Name] = goavro.Union(f.Type.Member.branch(), v)
		case v == nil && f.Type.Kind != KindNull:
			continue
		default:
			out[f.Name] = v
		}
	}
	return out
}

// Encode renders values as Avro binary.
func (d *Definition) Encode(values map[string]interface{}) ([]byte, error) {
	b, err := d.codec.BinaryFromNative(nil, d.Native(values))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, d.FullName(), err)
	}
	return b, nil
}

// Decode parses Avro binary back into goavro's native form. Nullable fields
// decode as nil or a single-entry map keyed by branch name.
func (d *Definition) Decode(b []byte) (map[string]interface{}, error) {
	native, _, err := d.codec.NativeFromBinary(b)
	if err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", d.FullName(), err)
	}
	m, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("schema: decode %s: unexpected %T", d.FullName(), native)
	}
	return m, nil
}
