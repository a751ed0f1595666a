package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequests, httpLatencyMs, httpThrottled)
}

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	httpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000, 15000, 45000},
		},
		[]string{"route"},
	)

	httpThrottled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_throttled_total",
			Help: "Requests rejected by the rate limiter or concurrency guard.",
		},
		[]string{"route", "reason"},
	)
)

func ObserveHTTPRequest(route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpLatencyMs.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

func IncHTTPThrottled(route, reason string) {
	httpThrottled.WithLabelValues(route, reason).Inc()
}
