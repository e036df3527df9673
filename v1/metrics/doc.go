// Package metrics provides Prometheus-based monitoring for the decode
// pipeline.
//
// The package maintains an isolated Prometheus registry per service, applies
// a constant "service" label to every instrument, and exposes the registry
// over a /metrics HTTP endpoint for scraping. The built-in instruments track
// the decode pipeline: rows decoded and rejected per read mode, decode plans
// compiled, and schema registry lookup latency. Additional instruments can be
// registered through the Create* factories.
//
// Basic Usage:
//
//	import "github.com/columnio/avroread/v1/metrics"
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "ingest-worker",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
//
//	m.IncrementRowsDecoded(metrics.ModeConfluent)
//	defer m.RecordSchemaFetchDuration(time.Now(), "ok")
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{Address: ":9090", ServiceName: "ingest-worker"}
//	    }),
//	)
//
// The FX module starts the metrics server on application start and shuts it
// down gracefully on stop.
package metrics
