package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadgraph_runs_total",
		Help: "Total number of pipeline runs, labelled by status.",
	}, []string{"status"})

	StageRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "threadgraph_stage_rows",
		Help: "Rows produced by each pipeline stage in the latest run.",
	}, []string{"stage"})

	ThreadsBuilt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "threadgraph_threads",
		Help: "Number of thread graphs built in the latest run.",
	})

	Anomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadgraph_anomalies_total",
		Help: "Recovered data-quality anomalies, labelled by kind.",
	}, []string{"kind"})

	AmbiguousDepths = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadgraph_ambiguous_depths_total",
		Help: "Nodes reached from several roots at different depths.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "threadgraph_run_duration_seconds",
		Help:    "End-to-end pipeline run latency in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ArtifactsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadgraph_artifacts_written_total",
		Help: "Output artifacts written, labelled by format and status.",
	}, []string{"format", "status"})
)
