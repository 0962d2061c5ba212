package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks reconciliation runs by outcome
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"operation", "outcome"},
	)

	// RunDuration tracks run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconcile_run_duration_seconds",
			Help:    "Reconciliation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ActiveRuns tracks runs in progress
	ActiveRuns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reconcile_active_runs",
			Help: "Number of reconciliation runs in progress",
		},
		[]string{"operation"},
	)

	// DiagnosticsTotal counts values replaced by defaults and missing inputs
	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_diagnostics_total",
			Help: "Total number of recovered normalization problems",
		},
		[]string{"source", "kind"},
	)

	// SourceRecords holds the record count of each source in the last run
	SourceRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reconcile_source_records",
			Help: "Records aggregated per source in the last run",
		},
		[]string{"source"},
	)

	// DivergencePercent holds the divergence of each pair in the last run
	DivergencePercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reconcile_divergence_percent",
			Help: "Percentage divergence per source pair in the last run",
		},
		[]string{"type", "pair"},
	)
)

// InstrumentRun records activity, duration and outcome of fn under operation
func InstrumentRun(operation string, fn func() error) error {
	ActiveRuns.WithLabelValues(operation).Inc()
	defer ActiveRuns.WithLabelValues(operation).Dec()

	start := time.Now()
	defer func() {
		RunDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	err := fn()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RunsTotal.WithLabelValues(operation, outcome).Inc()

	return err
}

// WriteTextfile dumps the default registry in the node_exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
