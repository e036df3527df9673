// Package logger provides structured logging functionality for Go applications.
//
// The logger package is designed to provide a standardized logging approach
// with log levels, contextual fields, and JSON output, built on Uber's Zap.
// It integrates with the fx dependency injection framework and is the logging
// surface used by the reader and registry packages.
//
// Basic Usage:
//
//	import "github.com/columnio/avroread/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:       logger.Info,
//	    ServiceName: "ingest-worker",
//	})
//
//	log.Info("Reader started", nil, map[string]interface{}{
//	    "topic": "events",
//	})
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    fx.Provide(
//	        func() logger.Config {
//	            return logger.Config{
//	                Level:       logger.Info,
//	                ServiceName: "ingest-worker",
//	            }
//	        },
//	    ),
//	)
//
// All log entries are JSON-encoded to stderr with ISO8601 timestamps, the
// process ID, and the configured service name. The underlying *zap.Logger is
// exposed as Logger.Zap for callers that need Zap-specific functionality.
package logger
