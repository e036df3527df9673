package reader

import (
	"github.com/columnio/avroread/v1/deserializer"
	"github.com/columnio/avroread/v1/logger"
	"github.com/columnio/avroread/v1/metrics"
)

// Options configures both reader modes.
type Options struct {
	// AllowMissingFields permits target columns absent from the writer
	// schema; such columns receive default values on every row. When false,
	// reader construction (or plan compilation for a new schema id) fails.
	AllowMissingFields bool

	// PathSeparator joins nested record field names when matching target
	// columns (default ".").
	PathSeparator string

	// Logger receives resynchronization warnings and reader lifecycle
	// events. Optional.
	Logger *logger.Logger

	// Metrics receives decode counters and registry lookup latencies.
	// Optional.
	Metrics *metrics.Metrics
}

func (o Options) compileOptions() deserializer.Options {
	return deserializer.Options{
		AllowMissingFields: o.AllowMissingFields,
		PathSeparator:      o.PathSeparator,
	}
}

func (o Options) logWarn(msg string, err error, fields map[string]interface{}) {
	if o.Logger != nil {
		o.Logger.Warn(msg, err, fields)
	}
}

func (o Options) logDebug(msg string, err error, fields map[string]interface{}) {
	if o.Logger != nil {
		o.Logger.Debug(msg, err, fields)
	}
}
