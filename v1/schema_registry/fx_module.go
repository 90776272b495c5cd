package schema_registry

import (
	"go.uber.org/fx"
)

// FXModule provides the schema registry client as Registry. A Config must be
// available in the container.
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(func() schema_registry.Config {
//	        return schema_registry.Config{URL: os.Getenv("SCHEMA_REGISTRY_URL")}
//	    }),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
	),
)

// SchemaRegistryParams groups the dependencies needed to create a client.
type SchemaRegistryParams struct {
	fx.In

	Config Config
}

// NewClientWithDI creates the client for fx. The HTTP client needs no
// shutdown hook.
func NewClientWithDI(params SchemaRegistryParams) (Registry, error) {
	return NewClient(params.Config)
}
