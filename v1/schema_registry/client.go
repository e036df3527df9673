package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hamba/avro/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/columnio/avroread/v1/schema_registry"

// Registry provides the lookup contract against a Confluent Schema Registry:
// resolve a schema identifier (or a subject's latest version) to a parsed
// Avro schema. Implementations memoize per identifier; a schema identifier
// never changes its associated schema, so entries are permanent.
type Registry interface {
	// GetSchemaByID retrieves and parses the schema with the given ID.
	GetSchemaByID(ctx context.Context, id uint32) (avro.Schema, error)

	// GetLatestSchema retrieves the latest version of a subject's schema.
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
//
// A Client is safe for concurrent use. Concurrent first lookups of the same
// identifier may fetch redundantly; the cache still converges because the
// stored binding is immutable, so either writer leaves the same entry.
type Client struct {
	url        string
	httpClient *http.Client

	// Cache for parsed schemas by ID
	schemaCache      map[uint32]avro.Schema
	schemaCacheMutex sync.RWMutex

	// Authentication
	username string
	password string

	tracer trace.Tracer
}

// Config holds configuration for schema registry client
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string

	// Username for basic auth (optional)
	Username string

	// Password for basic auth (optional)
	Password string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema_registry: URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		url: config.URL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		schemaCache: make(map[uint32]avro.Schema),
		username:    config.Username,
		password:    config.Password,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// URL returns the registry endpoint this client is bound to.
func (c *Client) URL() string { return c.url }

// GetSchemaByID retrieves a schema from the registry by its ID, parsing and
// caching it on first use. The network fetch may block the calling goroutine
// up to the configured timeout; failures propagate without retry.
func (c *Client) GetSchemaByID(ctx context.Context, id uint32) (avro.Schema, error) {
	// Check cache first
	c.schemaCacheMutex.RLock()
	if schema, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		return schema, nil
	}
	c.schemaCacheMutex.RUnlock()

	ctx, span := c.tracer.Start(ctx, "schema_registry.fetch",
		trace.WithAttributes(attribute.Int64("schema.id", int64(id))))
	defer span.End()

	url := fmt.Sprintf("%s/schemas/ids/%d", c.url, id)
	body, err := c.get(ctx, url)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var result struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding response for id %d: %v", ErrInvalidSchema, id, err)
	}

	// Each registry schema is parsed into its own name cache so subjects
	// that redefine the same record name cannot collide.
	schema, err := avro.ParseBytesWithCache([]byte(result.Schema), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("%w: parsing schema id %d: %v", ErrInvalidSchema, id, err)
	}

	// Cache the parsed schema
	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = schema
	c.schemaCacheMutex.Unlock()

	return schema, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject.
// The parsed form is cached under the returned ID for later lookups by ID.
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	ctx, span := c.tracer.Start(ctx, "schema_registry.fetch_latest",
		trace.WithAttributes(attribute.String("schema.subject", subject)))
	defer span.End()

	url := fmt.Sprintf("%s/subjects/%s/versions/latest", c.url, subject)
	body, err := c.get(ctx, url)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var metadata Metadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("%w: decoding response for subject %q: %v", ErrInvalidSchema, subject, err)
	}
	metadata.Subject = subject

	schema, err := avro.ParseBytesWithCache([]byte(metadata.Schema), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("%w: parsing schema for subject %q: %v", ErrInvalidSchema, subject, err)
	}

	c.schemaCacheMutex.Lock()
	c.schemaCache[uint32(metadata.ID)] = schema
	c.schemaCacheMutex.Unlock()

	return &metadata, nil
}

// get performs one authenticated registry request and maps HTTP failures to
// the package's typed errors.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("schema_registry: failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrRegistryUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchemaID, string(body))
	default:
		return nil, fmt.Errorf("%w: registry returned status %d: %s", ErrRegistryUnavailable, resp.StatusCode, string(body))
	}
}
