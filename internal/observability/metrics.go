package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the mobility pipeline.
type Metrics struct {
	RecordsLoaded      prometheus.Counter
	RecordsMissingFIPS *prometheus.CounterVec // labels: column={origin_fips,dest_fips}
	InflowRows         prometheus.Gauge
	PipelineRunning    prometheus.Gauge
	RunDuration        prometheus.Histogram

	// State map cache reconciliation.
	StateMapWrites *prometheus.CounterVec // labels: reason={created,rewritten}

	// Sink metrics.
	SinkRowsWritten *prometheus.CounterVec // labels: sink
	SinkErrors      *prometheus.CounterVec // labels: sink
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.RecordsLoaded,
		m.RecordsMissingFIPS,
		m.InflowRows,
		m.PipelineRunning,
		m.RunDuration,
		m.StateMapWrites,
		m.SinkRowsWritten,
		m.SinkErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flu_mobility",
			Name:      "records_loaded_total",
			Help:      "Total mobility records read from input tables.",
		}),
		RecordsMissingFIPS: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flu_mobility",
			Name:      "records_missing_fips_total",
			Help:      "Mobility records whose location column had no digit run.",
		}, []string{"column"}),
		InflowRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flu_mobility",
			Name:      "inflow_rows",
			Help:      "Weekly (week, destination) inflow rows in the current snapshot.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flu_mobility",
			Name:      "pipeline_running",
			Help:      "1 while an aggregation run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flu_mobility",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-aggregate-publish run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StateMapWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flu_mobility",
			Name:      "state_map_writes_total",
			Help:      "State FIPS map cache writes by reason.",
		}, []string{"reason"}),
		SinkRowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flu_mobility",
			Name:      "sink_rows_written_total",
			Help:      "Inflow rows written per sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flu_mobility",
			Name:      "sink_errors_total",
			Help:      "Failed sink writes per sink.",
		}, []string{"sink"}),
	}
}
