package schema_registry

import (
	"context"
	"log"

	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides and configures the Schema Registry client.
// This module registers the Schema Registry client with the Fx dependency injection framework,
// making it available to other components in the application.
//
// The module:
// 1. Provides the Schema Registry client factory function
// 2. Invokes the lifecycle registration to manage the client's lifecycle
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL:      "http://localhost:8081",
//	                Username: "user",
//	                Password: "pass",
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config Config
}

// NewClientWithDI creates the shared Schema Registry client for the configured
// endpoint using dependency injection. The process-wide endpoint cache is
// consulted first, so several fx apps in one process pointed at the same
// registry share one schema cache.
//
// Parameters:
//   - params: A SchemaRegistryParams struct that contains the Config instance
//     required to initialize the Schema Registry client.
//     This struct embeds fx.In to enable automatic injection of these dependencies.
//
// Returns:
//   - Registry: A fully initialized Schema Registry client ready for use.
func NewClientWithDI(params SchemaRegistryParams) (Registry, error) {
	return ForEndpoint(params.Config)
}

// SchemaRegistryLifecycleParams groups the dependencies needed for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Registry  Registry
}

// RegisterSchemaRegistryLifecycle registers the Schema Registry client with the fx lifecycle system.
// This function sets up proper initialization and graceful shutdown of the Schema Registry client.
//
// Parameters:
//   - params: The lifecycle parameters containing the Schema Registry client
//
// The function:
//  1. On application start: Logs that the registry client is ready
//  2. On application stop: Currently no cleanup needed (HTTP client is stateless)
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("INFO: Schema Registry client initialized")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: Schema Registry client shutdown")
			// HTTP client cleanup is handled automatically by Go runtime
			return nil
		},
	})
}
