package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Read modes used as metric labels.
const (
	ModeContainer = "container"
	ModeConfluent = "confluent"
)

// IncrementRowsDecoded increments the decoded-row counter for a read mode.
// Example: metrics.IncrementRowsDecoded(metrics.ModeConfluent)
func (m *Metrics) IncrementRowsDecoded(mode string) {
	m.rowsDecoded.WithLabelValues(mode).Inc()
}

// IncrementMalformedRows increments the rejected-row counter for a read mode.
func (m *Metrics) IncrementMalformedRows(mode string) {
	m.malformedRows.WithLabelValues(mode).Inc()
}

// IncrementPlansCompiled increments the compiled-plan counter for a read mode.
func (m *Metrics) IncrementPlansCompiled(mode string) {
	m.plansCompiled.WithLabelValues(mode).Inc()
}

// RecordSchemaFetchDuration records the duration (in seconds) of one registry lookup.
// Example: defer metrics.RecordSchemaFetchDuration(time.Now(), "ok")
func (m *Metrics) RecordSchemaFetchDuration(start time.Time, outcome string) {
	duration := time.Since(start).Seconds()
	m.schemaFetchLatency.WithLabelValues(outcome).Observe(duration)
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
// Used internally by NewMetrics for latency tracking.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec safely for resource monitoring.
// Used internally by NewMetrics to track resource utilization.
func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
