package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckpipe_pipeline_steps_total",
			Help: "Total number of executed pipeline steps.",
		},
		[]string{"kind", "status"},
	)

	reportRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckpipe_report_rows_total",
			Help: "Total number of rows emitted by query reports.",
		},
		[]string{"query"},
	)

	pipelineDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckpipe_pipeline_duration_seconds",
			Help:    "End-to-end pipeline run latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineStepsTotal, reportRowsTotal, pipelineDurationSeconds)
}

func ObserveStep(kind, status string) {
	pipelineStepsTotal.WithLabelValues(kind, status).Inc()
}

func AddReportRows(query string, rows int) {
	reportRowsTotal.WithLabelValues(query).Add(float64(rows))
}

func ObservePipelineDuration(d time.Duration) {
	pipelineDurationSeconds.Observe(d.Seconds())
}
