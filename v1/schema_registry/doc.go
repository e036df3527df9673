// Package schema_registry provides the lookup side of a Confluent Schema
// Registry: resolving a schema identifier (or a subject's latest version) to
// a parsed Avro schema over HTTP, with caching at two scopes.
//
// Core Features:
//   - HTTP client for Confluent Schema Registry (basic auth, timeouts)
//   - Parsed-schema cache per client, keyed by schema ID, permanent for the
//     client's lifetime
//   - Process-wide client cache keyed by registry endpoint, so many
//     short-lived readers against the same endpoint share one schema cache
//   - Typed errors for unknown identifiers and unreachable registries
//
// Lookups never retry internally; transport failures and server errors
// surface to the caller as ErrRegistryUnavailable.
//
// Basic Usage:
//
//	import "github.com/columnio/avroread/v1/schema_registry"
//
//	// Shared client for an endpoint (process-wide, created on first use)
//	registry, err := schema_registry.ForEndpoint(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	    Timeout:  10 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resolve a schema identifier to a parsed Avro schema
//	schema, err := registry.GetSchemaByID(ctx, 42)
//	if err != nil {
//	    if schema_registry.IsUnknownSchemaIDError(err) {
//	        // the id was never registered
//	    }
//	    return err
//	}
//
// Using with FX:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL:      os.Getenv("SCHEMA_REGISTRY_URL"),
//	                Username: os.Getenv("SCHEMA_REGISTRY_USER"),
//	                Password: os.Getenv("SCHEMA_REGISTRY_PASSWORD"),
//	                Timeout:  30 * time.Second,
//	            }
//	        },
//	    ),
//	    // Your application code that uses schema_registry.Registry
//	)
//
// Wire Format:
//
// Messages framed for registry-resolved decoding use the Confluent wire
// format defined in the avrowire package:
//
//	[magic_byte (1 byte)] [schema_id (4 bytes, big-endian)] [payload]
//
// Schema Caching:
//
// The client caches parsed schemas by ID to minimize network calls to the
// Schema Registry. Caches are thread-safe and maintained in-memory for the
// lifetime of the client; identifiers are never re-fetched because a
// registered schema never changes under its id.
package schema_registry
