package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		pipelineRuns,
		pipelineStageFailures,
		pipelineStageLatency,
		stagingCleanupFailures,
		stagingSweptFiles,
	)
}

var (
	pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Completed pipeline runs by outcome (success|failure).",
		},
		[]string{"outcome"},
	)

	pipelineStageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failures_total",
			Help: "Pipeline aborts by failing stage.",
		},
		[]string{"stage"},
	)

	pipelineStageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_latency_ms",
			Help:    "Per-stage latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage"},
	)

	stagingCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staging_cleanup_failures_total",
			Help: "Best-effort staging file removals that failed.",
		},
	)

	stagingSweptFiles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staging_swept_files_total",
			Help: "Orphaned staging files removed by the janitor.",
		},
	)
)

func IncPipelineRun(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	pipelineRuns.WithLabelValues(outcome).Inc()
}

func IncStageFailure(stage string) {
	pipelineStageFailures.WithLabelValues(stage).Inc()
}

func ObserveStageLatency(stage string, d time.Duration) {
	pipelineStageLatency.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

func IncStagingCleanupFailure() { stagingCleanupFailures.Inc() }

func AddStagingSweptFiles(n int) { stagingSweptFiles.Add(float64(n)) }
