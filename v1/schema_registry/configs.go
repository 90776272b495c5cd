package schema_registry

import "time"

// Config holds configuration for the schema registry client.
type Config struct {
	// URL is the registry endpoint, e.g. "http://localhost:8081".
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL" validate:"required,url"`

	// Username and Password enable HTTP basic auth when Username is set.
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USERNAME"`
	Password string `yaml:"password" envconfig:"SCHEMA_REGISTRY_PASSWORD"`

	// Timeout bounds every HTTP request. Defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT" default:"10s"`

	TLS TLSConfig
}

// TLSConfig configures HTTPS towards the registry.
type TLSConfig struct {
	// CACertPath is a PEM bundle used to verify the registry certificate.
	CACertPath string `yaml:"ca_cert_path" envconfig:"SCHEMA_REGISTRY_SSL_CA_LOCATION"`

	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"SCHEMA_REGISTRY_SSL_INSECURE_SKIP_VERIFY"`
}

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second
