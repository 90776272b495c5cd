package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linkedin/goavro/v2"
)

// Definition is an immutable record schema fetched from the registry.
type Definition struct {
	Name      string
	Namespace string
	Fields    []Field

	// Subject, ID and Version identify the registry entry the definition
	// came from. They are zero for schemas parsed without registry metadata.
	Subject string
	ID      int
	Version int

	text  string
	codec *goavro.Codec
}

// Text returns the schema text the definition was parsed from.
func (d *Definition) Text() string { return d.text }

// FullName is namespace.name, or just name without a namespace.
func (d *Definition) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// Field returns the declared field with the given name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Parse compiles Avro schema text into a Definition. The top-level type must
// be a record.
func Parse(text string) (*Definition, error) {
	return ParseRegistered("", 0, 0, text)
}

// ParseRegistered is Parse for text fetched from the registry; the registry
// coordinates are kept on the definition for wire encoding.
func ParseRegistered(subject string, id, version int, text string) (*Definition, error) {
	codec, err := goavro.NewCodec(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: top-level schema must be a JSON object: %v", ErrSchemaParse, err)
	}

	var typeName string
	if err := json.Unmarshal(raw["type"], &typeName); err != nil || typeName != "record" {
		return nil, fmt.Errorf("%w: top-level schema must be a record", ErrSchemaParse)
	}

	def := &Definition{
		Subject: subject,
		ID:      id,
		Version: version,
		text:    text,
		codec:   codec,
	}
	_ = json.Unmarshal(raw["name"], &def.Name)
	_ = json.Unmarshal(raw["namespace"], &def.Namespace)
	if i := strings.LastIndexByte(def.Name, '.'); i >= 0 {
		def.Namespace, def.Name = def.Name[:i], def.Name[i+1:]
	}

	var fields []struct {
		Name    string          `json:"name"`
		Type    json.RawMessage `json:"type"`
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(raw["fields"], &fields); err != nil {
		return nil, fmt.Errorf("%w: record fields: %v", ErrSchemaParse, err)
	}

	def.Fields = make([]Field, 0, len(fields))
	for _, f := range fields {
		t, err := parseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrSchemaParse, f.Name, err)
		}
		def.Fields = append(def.Fields, Field{Name: f.Name, Type: t, HasDefault: f.Default != nil})
	}
	return def, nil
}

// parseType maps one Avro type declaration into the closed Type union.
func parseType(raw json.RawMessage) (*Type, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing type")
	}

	switch raw[0] {
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		if k, ok := primitiveKinds[name]; ok {
			return Primitive(k), nil
		}
		// reference to a named record, enum or fixed
		return Unsupported(name), nil

	case '[':
		var members []json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, err
		}
		return parseUnion(members)

	case '{':
		var obj struct {
			Type        json.RawMessage `json:"type"`
			LogicalType string          `json:"logicalType"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		var name string
		if err := json.Unmarshal(obj.Type, &name); err != nil {
			// {"type": [...]} or {"type": {...}}
			return parseType(obj.Type)
		}
		k, ok := primitiveKinds[name]
		if !ok {
			return Unsupported(name), nil
		}
		if obj.LogicalType == "decimal" {
			return Unsupported(name + ".decimal"), nil
		}
		return &Type{Kind: k, Logical: obj.LogicalType}, nil
	}

	return nil, fmt.Errorf("unexpected type declaration %s", string(raw))
}

func parseUnion(members []json.RawMessage) (*Type, error) {
	var (
		hasNull bool
		others  []*Type
	)
	for _, m := range members {
		t, err := parseType(m)
		if err != nil {
			return nil, err
		}
		if t.Kind == KindNull {
			hasNull = true
			continue
		}
		others = append(others, t)
	}
	if hasNull && len(others) == 1 {
		return Nullable(others[0]), nil
	}
	if !hasNull && len(others) == 1 {
		return others[0], nil
	}
	return Unsupported("union"), nil
}
