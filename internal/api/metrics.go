package api

import (
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbinewatch_backend_requests_total",
			Help: "Backend requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turbinewatch_backend_request_duration_seconds",
			Help:    "Backend request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func observeFetch(endpoint string, status int, err error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "unreachable"
	case status >= 400:
		outcome = strconv.Itoa(status)
	}
	name := path.Clean(endpoint)
	FetchTotal.WithLabelValues(name, outcome).Inc()
	FetchLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}
