package transforms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Aleph-Alpha/outbox-router/v1/outbox"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

// Transform type names. Fully qualified class names such as
// "com.example.transforms.ExtractHeader" resolve to the same types.
const (
	TypeOutboxEventRouter      = "OutboxEventRouter"
	TypeExtractHeader          = "ExtractHeader"
	TypeExtractMultipleHeaders = "ExtractMultipleHeaders"
	TypeUpdateProcessedAt      = "UpdateProcessedAt"
)

// ErrUnknownTransform is returned for type names without a factory.
var ErrUnknownTransform = errors.New("unknown transform type")

// Factory returns a new, unconfigured transform.
type Factory func() transform.Transformation

// Registry maps type names to factories, and optionally to shared instances
// that are already configured.
type Registry struct {
	log       outbox.Logger
	factories map[string]Factory
	shared    map[string]transform.Transformation
}

// NewRegistry returns a registry holding the built-in transforms. Routers it
// creates log through log.
func NewRegistry(log outbox.Logger, opts ...outbox.Option) *Registry {
	r := &Registry{
		log:       log,
		factories: make(map[string]Factory),
		shared:    make(map[string]transform.Transformation),
	}
	r.Register(TypeOutboxEventRouter, func() transform.Transformation { return outbox.NewRouter(log, opts...) })
	r.Register(TypeExtractHeader, func() transform.Transformation { return &ExtractHeader{} })
	r.Register(TypeExtractMultipleHeaders, func() transform.Transformation { return &ExtractMultipleHeaders{} })
	r.Register(TypeUpdateProcessedAt, func() transform.Transformation { return NewUpdateProcessedAt(nil) })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Use makes every chain entry of type name use t as is. t is not configured
// again by Build.
func (r *Registry) Use(name string, t transform.Transformation) {
	r.shared[name] = t
}

// Names lists the registered type names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns a transform of the given type and whether it still needs
// Configure.
func (r *Registry) New(name string) (transform.Transformation, bool, error) {
	name = simpleName(name)
	if t, ok := r.shared[name]; ok {
		return t, false, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	return f(), true, nil
}

// Build creates a chain from Kafka Connect style properties:
//
//	transforms=outbox,processed
//	transforms.outbox.type=OutboxEventRouter
//	transforms.outbox.schema.registry.url=http://registry:8081
//	transforms.processed.type=UpdateProcessedAt
func (r *Registry) Build(props map[string]string) (*Chain, error) {
	aliases := splitAliases(props["transforms"])
	if len(aliases) == 0 {
		return nil, fmt.Errorf("%w: no transforms listed", transform.ErrInvalidConfig)
	}

	chain := &Chain{}
	for _, alias := range aliases {
		prefix := "transforms." + alias + "."
		typeName := props[prefix+"type"]
		if typeName == "" {
			_ = chain.Close()
			return nil, fmt.Errorf("%w: %stype is required", transform.ErrInvalidConfig, prefix)
		}

		t, configure, err := r.New(typeName)
		if err != nil {
			_ = chain.Close()
			return nil, fmt.Errorf("transform %s: %w", alias, err)
		}
		options := subProps(props, prefix)
		if configure {
			if err := t.Configure(options); err != nil {
				_ = chain.Close()
				return nil, fmt.Errorf("transform %s: %w", alias, err)
			}
		} else if len(options) > 0 && r.log != nil {
			r.log.WarnWithContext(context.Background(), "options ignored for a shared transform", nil, map[string]interface{}{
				"alias":   alias,
				"type":    typeName,
				"options": sortedOptionNames(options),
			})
		}
		chain.add(alias, t)
	}
	return chain, nil
}

func splitAliases(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func subProps(props map[string]string, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range props {
		if strings.HasPrefix(k, prefix) && k != prefix+"type" {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out
}

func simpleName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sortedOptionNames(options map[string]string) []string {
	names := make([]string, 0, len(options))
	for k := range options {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
