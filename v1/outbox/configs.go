package outbox

import (
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

// Option keys accepted by Configure. The names follow the Kafka Connect
// converter convention so existing connector configs can be reused.
const (
	ConfigRegistryURL                = "schema.registry.url"
	ConfigRegistryUsername           = "schema.registry.username"
	ConfigRegistryPassword           = "schema.registry.password"
	ConfigRegistryTruststoreLocation = "schema.registry.ssl.truststore.location"
	ConfigRegistryTruststorePassword = "schema.registry.ssl.truststore.password"
	ConfigRegistryTimeout            = "schema.registry.timeout"
)

var configDef = transform.ConfigDef{
	{Name: ConfigRegistryURL, Type: transform.TypeString, Required: true, Validate: "url",
		Doc: "Schema registry URL"},
	{Name: ConfigRegistryUsername, Type: transform.TypeString,
		Doc: "Schema registry basic auth username"},
	{Name: ConfigRegistryPassword, Type: transform.TypePassword,
		Doc: "Schema registry basic auth password"},
	{Name: ConfigRegistryTruststoreLocation, Type: transform.TypeString,
		Doc: "PEM file with the CA certificates trusted for the registry"},
	{Name: ConfigRegistryTruststorePassword, Type: transform.TypePassword,
		Doc: "Accepted for compatibility, PEM bundles are not encrypted"},
	{Name: ConfigRegistryTimeout, Type: transform.TypeDuration, Default: "10s",
		Doc: "Timeout of a single registry request"},
}

// RegistryConfig maps parsed options to a registry client config.
func RegistryConfig(values transform.Values) schema_registry.Config {
	return schema_registry.Config{
		URL:      values.String(ConfigRegistryURL),
		Username: values.String(ConfigRegistryUsername),
		Password: values.String(ConfigRegistryPassword),
		Timeout:  values.Duration(ConfigRegistryTimeout),
		TLS: schema_registry.TLSConfig{
			CACertPath: values.String(ConfigRegistryTruststoreLocation),
		},
	}
}
