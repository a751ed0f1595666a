package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		generationFallbacks,
		generationTokensIn,
		generationTokensOut,
		generationLatencyMs,
	)
}

var (
	// Generation failures never abort a pipeline run; they are absorbed
	// into a fallback reply. This counter is the monitoring signal for a
	// systemic generation-backend outage.
	generationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_fallbacks_total",
			Help: "Generation calls absorbed into a fallback reply, by cause (remote|transport|empty).",
		},
		[]string{"cause"},
	)

	generationTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_in",
			Help: "Approximate prompt tokens per model.",
		},
		[]string{"model"},
	)

	generationTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_out",
			Help: "Approximate completion tokens per model.",
		},
		[]string{"model"},
	)

	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_latency_ms",
			Help:    "Generation call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"model", "success"},
	)
)

func IncGenerationFallback(cause string) {
	generationFallbacks.WithLabelValues(cause).Inc()
}

func AddGenerationTokens(model string, in, out int) {
	if in > 0 {
		generationTokensIn.WithLabelValues(model).Add(float64(in))
	}
	if out > 0 {
		generationTokensOut.WithLabelValues(model).Add(float64(out))
	}
}

func ObserveGenerationLatency(model string, success bool, d time.Duration) {
	generationLatencyMs.WithLabelValues(model, strconv.FormatBool(success)).Observe(float64(d.Milliseconds()))
}
