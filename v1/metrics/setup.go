package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing decode-pipeline metrics.
//
// This structure provides the components needed to register metrics collectors
// and serve them via the /metrics HTTP endpoint for Prometheus scraping.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// Core built-in metrics
	rowsDecoded        *prometheus.CounterVec
	malformedRows      *prometheus.CounterVec
	plansCompiled      *prometheus.CounterVec
	schemaFetchLatency *prometheus.HistogramVec
}

// Config holds configuration for the metrics server.
type Config struct {
	// Address is the listen address of the /metrics endpoint, e.g. ":9090".
	Address string

	// ServiceName is applied as a constant "service" label to every metric.
	ServiceName string

	// EnableDefaultCollectors registers the standard Go, process, and build
	// info collectors alongside the domain metrics.
	EnableDefaultCollectors bool
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers default system collectors,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// The built-in instruments cover the decode pipeline:
//   - rows_decoded_total{mode}: rows successfully deserialized, by read mode
//     ("container" or "confluent")
//   - malformed_rows_total{mode}: rows rejected as corrupt
//   - plans_compiled_total{mode}: decode plans compiled (a plan-cache miss
//     in confluent mode compiles exactly one plan)
//   - schema_fetch_duration_seconds{outcome}: registry lookup latency
//
// Example:
//
//	cfg := metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "ingest-worker",
//	    EnableDefaultCollectors: true,
//	}
//	metricsInstance := metrics.NewMetrics(cfg)
//	go metricsInstance.Server.ListenAndServe()
//
// Access metrics at: http://localhost:9090/metrics
func NewMetrics(cfg Config) *Metrics {
	// Create a new isolated Prometheus registry for this service.
	// This avoids metric collisions when multiple services run in the same process.
	registry := prometheus.NewRegistry()

	// Wrap the registry with a constant label for consistent observability.
	// All metrics emitted by this service will automatically include the label:
	//   service="<cfg.ServiceName>"
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	// Define default metrics using helpers
	m.rowsDecoded = createCounterVec("rows_decoded_total", "Total number of rows successfully deserialized", []string{"mode"})
	m.malformedRows = createCounterVec("malformed_rows_total", "Total number of rows rejected as malformed", []string{"mode"})
	m.plansCompiled = createCounterVec("plans_compiled_total", "Total number of decode plans compiled", []string{"mode"})
	m.schemaFetchLatency = createHistogramVec("schema_fetch_duration_seconds", "Duration of schema registry lookups in seconds", []string{"outcome"}, prometheus.DefBuckets)

	// Register the metrics
	wrappedRegistry.MustRegister(
		m.rowsDecoded,
		m.malformedRows,
		m.plansCompiled,
		m.schemaFetchLatency,
	)

	// Register standard collectors if enabled.
	// These provide essential runtime metrics for Go processes:
	//   - GoCollector: Memory usage, goroutines, GC stats
	//   - ProcessCollector: CPU, file descriptors, memory stats
	//   - BuildInfoCollector: Binary version/build info
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	// Create an HTTP handler that serves metrics from the registry.
	// The handler exposes metrics at /metrics for Prometheus scraping.
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Configure the HTTP server for exposing metrics.
	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	m.Server = server
	return m
}
