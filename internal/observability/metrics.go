package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conversion pipeline.
type Metrics struct {
	DatasetsWritten  prometheus.Counter
	ConversionErrors prometheus.Counter
	EmptyInputs      prometheus.Counter
	BatchRunning     prometheus.Gauge

	// Per-instrument processing metrics.
	InstrumentDuration *prometheus.HistogramVec // label: class

	// Calibration lookup metrics.
	CalibrationLookups *prometheus.CounterVec // labels: class, outcome={cached,fetched,missing,error}

	// Dataset notification metrics.
	NotifyPublished prometheus.Counter
	NotifyErrors    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetsWritten,
		m.ConversionErrors,
		m.EmptyInputs,
		m.BatchRunning,
		m.InstrumentDuration,
		m.CalibrationLookups,
		m.NotifyPublished,
		m.NotifyErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "datasets_written_total",
			Help:      "Total NetCDF datasets written.",
		}),
		ConversionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "conversion_errors_total",
			Help:      "Total instrument conversions that failed.",
		}),
		EmptyInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "empty_inputs_total",
			Help:      "Total input files skipped because they held no samples.",
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "moorproc",
			Name:      "batch_running",
			Help:      "1 while a batch run is active, 0 otherwise.",
		}),
		InstrumentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moorproc",
			Name:      "instrument_duration_seconds",
			Help:      "Duration of one instrument conversion, by class.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"class"}),
		CalibrationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "calibration_lookups_total",
			Help:      "Calibration coefficient lookups by class and outcome.",
		}, []string{"class", "outcome"}),
		NotifyPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "notify_published_total",
			Help:      "Dataset update notifications published.",
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moorproc",
			Name:      "notify_errors_total",
			Help:      "Dataset update notifications that failed to publish.",
		}),
	}
}
