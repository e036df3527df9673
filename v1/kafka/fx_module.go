package kafka

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the Kafka source.
// This module integrates the consumer into an Fx-based application by
// providing the Source factory and registering its lifecycle hooks.
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    fx.Provide(
//	        func() kafka.Config {
//	            return kafka.Config{
//	                Brokers: []string{"localhost:9092"},
//	                Topic:   "events",
//	                GroupID: "ingest-worker",
//	            }
//	        },
//	    ),
//	)
//
// Dependencies required by this module:
// - A kafka.Config instance must be available in the dependency injection container
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewSourceWithDI,
	),
	fx.Invoke(RegisterSourceLifecycle),
)

// SourceParams groups the dependencies needed to create a Kafka source
type SourceParams struct {
	fx.In

	Config Config
}

// NewSourceWithDI creates a new Kafka source using dependency injection.
func NewSourceWithDI(params SourceParams) (*Source, error) {
	return NewSource(params.Config)
}

// SourceLifecycleParams groups the dependencies for source lifecycle management
type SourceLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Source    *Source
}

// RegisterSourceLifecycle registers the Kafka source with the fx lifecycle
// system so the consumer connection is closed gracefully on shutdown.
func RegisterSourceLifecycle(params SourceLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Source.GracefulShutdown()
		},
	})
}
