package connect

import "strings"

// Field is one named entry of a Struct.
type Field struct {
	Name  string
	Value Value
}

// Struct is an ordered set of named values. It models both the generic
// envelope read from the outbox table and the typed payload built from a
// registry schema.
type Struct struct {
	Name   string
	Fields []Field
}

// NewStruct returns an empty struct with the given name.
func NewStruct(name string) *Struct {
	return &Struct{Name: name}
}

// Put sets a field, replacing an existing one with the same name.
func (s *Struct) Put(name string, v Value) *Struct {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields[i].Value = v
			return s
		}
	}
	s.Fields = append(s.Fields, Field{Name: name, Value: v})
	return s
}

// Get looks a field up by name. A missing field and a field holding Null
// both report false.
func (s *Struct) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, !f.Value.IsNull()
		}
	}
	return Value{}, false
}

// Text is Get followed by Value.Text.
func (s *Struct) Text(name string) (string, bool) {
	v, ok := s.Get(name)
	if !ok {
		return "", false
	}
	return v.Text()
}

// Map returns the fields in Go native form, ready for JSON or Avro encoding.
func (s *Struct) Map() map[string]interface{} {
	if s == nil {
		return nil
	}
	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Value.Interface()
	}
	return out
}

// Clone returns a deep copy.
func (s *Struct) Clone() *Struct {
	if s == nil {
		return nil
	}
	out := &Struct{Name: s.Name, Fields: make([]Field, len(s.Fields))}
	for i, f := range s.Fields {
		if raw, ok := f.Value.AsBytes(); ok {
			f.Value = Bytes(append([]byte(nil), raw...))
		}
		out.Fields[i] = f
	}
	return out
}

// Equal compares name and fields in order.
func (s *Struct) Equal(o *Struct) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Name != o.Name || len(s.Fields) != len(o.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != o.Fields[i].Name || !s.Fields[i].Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	return true
}

func (s *Struct) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}
