package schema_registry

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Registry is the registry capability the router depends on.
//
//go:generate mockgen -source=client.go -destination=mock_registry.go -package=schema_registry
type Registry interface {
	// GetLatestSchema retrieves the latest version of a schema for a subject.
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// GetSchemaByID retrieves a schema by its global ID.
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// RegisterSchema registers a schema under a subject and returns its ID.
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)
}

// Metadata contains metadata about a registered schema.
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

const contentType = "application/vnd.schemaregistry.v1+json"

// Client talks to a Confluent compatible schema registry over HTTP.
// It does not cache GetLatestSchema: "latest" is only meaningful when asked.
type Client struct {
	url        string
	httpClient *http.Client

	schemaCache      map[int]string
	schemaCacheMutex sync.RWMutex

	username string
	password string
}

var _ Registry = (*Client)(nil)

// NewClient creates a new schema registry client.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.TLS.CACertPath != "" || config.TLS.InsecureSkipVerify {
		tlsConfig, err := createTLSConfig(config.TLS)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &Client{
		url: strings.TrimRight(config.URL, "/"),
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		schemaCache: make(map[int]string),
		username:    config.Username,
		password:    config.Password,
	}, nil
}

// GetSchemaByID retrieves a schema from the registry by its ID. IDs are
// immutable so results are cached.
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	c.schemaCacheMutex.RLock()
	if schema, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		return schema, nil
	}
	c.schemaCacheMutex.RUnlock()

	var result struct {
		Schema string `json:"schema"`
	}
	status, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &result)
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: id %d", ErrSchemaNotFound, id)
	}
	if err != nil {
		return "", err
	}

	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = result.Schema
	c.schemaCacheMutex.Unlock()

	return result.Schema, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject.
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	var metadata Metadata
	status, err := c.do(ctx, http.MethodGet, "/subjects/"+url.PathEscape(subject)+"/versions/latest", nil, &metadata)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, subject)
	}
	if err != nil {
		return nil, err
	}
	if metadata.Schema == "" {
		return nil, fmt.Errorf("%w: %s: empty schema", ErrSubjectNotFound, subject)
	}
	metadata.Subject = subject

	c.schemaCacheMutex.Lock()
	c.schemaCache[metadata.ID] = metadata.Schema
	c.schemaCacheMutex.Unlock()

	return &metadata, nil
}

// RegisterSchema registers a new schema version under subject.
func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	payload := map[string]interface{}{
		"schema": schema,
	}
	if schemaType != "" && schemaType != "AVRO" {
		payload["schemaType"] = schemaType
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result struct {
		ID int `json:"id"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/subjects/"+url.PathEscape(subject)+"/versions", body, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

// do performs one request and decodes a 200 response into out. The status
// code is returned even on error so callers can map 404s.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", contentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("%w: schema registry returned status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, nil
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert %s", cfg.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}
