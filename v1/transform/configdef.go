package transform

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned by ConfigDef.Parse.
var ErrInvalidConfig = errors.New("invalid transform configuration")

// Type is the value type of a config key.
type Type uint8

const (
	TypeString Type = iota
	TypePassword
	TypeList
	TypeBool
	TypeInt
	TypeDuration
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypePassword:
		return "password"
	case TypeList:
		return "list"
	case TypeBool:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Key describes one option.
type Key struct {
	Name     string
	Type     Type
	Default  string
	Required bool

	// Validate is a go-playground/validator tag applied to the raw string,
	// e.g. "url" or "oneof=topic record".
	Validate string

	Doc string
}

// ConfigDef is the set of options a transformation understands.
type ConfigDef []Key

var validate = validator.New()

// Define appends a key.
func (d ConfigDef) Define(key Key) ConfigDef {
	return append(d, key)
}

// Names returns the key names in sorted order.
func (d ConfigDef) Names() []string {
	names := make([]string, 0, len(d))
	for _, k := range d {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// Parse resolves props against the definition: defaults are applied,
// required keys enforced and every value type-checked.
func (d ConfigDef) Parse(props map[string]string) (Values, error) {
	values := make(Values, len(d))
	var errs []error

	for _, k := range d {
		raw, ok := props[k.Name]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			if k.Required && k.Default == "" {
				errs = append(errs, fmt.Errorf("%s: required", k.Name))
				continue
			}
			raw = k.Default
		}

		if raw != "" && k.Validate != "" {
			if err := validate.Var(raw, k.Validate); err != nil {
				errs = append(errs, fmt.Errorf("%s: %q fails %q", k.Name, redact(k, raw), k.Validate))
				continue
			}
		}

		v, err := convert(k.Type, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k.Name, err))
			continue
		}
		values[k.Name] = v
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return values, nil
}

func convert(t Type, raw string) (interface{}, error) {
	switch t {
	case TypeList:
		return splitList(raw), nil
	case TypeBool:
		if raw == "" {
			return false, nil
		}
		return strconv.ParseBool(raw)
	case TypeInt:
		if raw == "" {
			return 0, nil
		}
		return strconv.Atoi(raw)
	case TypeDuration:
		if raw == "" {
			return time.Duration(0), nil
		}
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func redact(k Key, raw string) string {
	if k.Type == TypePassword {
		return "[hidden]"
	}
	return raw
}

// Values holds parsed options. Accessors return the zero value for unknown keys.
type Values map[string]interface{}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) List(name string) []string {
	l, _ := v[name].([]string)
	return l
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

func (v Values) Duration(name string) time.Duration {
	d, _ := v[name].(time.Duration)
	return d
}
