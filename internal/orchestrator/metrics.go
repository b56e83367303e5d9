package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	ViewLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbinewatch_view_loads_total",
			Help: "View loads by view and result (applied, stale, unreachable).",
		},
		[]string{"view", "result"},
	)
	ViewLoadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turbinewatch_view_load_duration_seconds",
			Help:    "Time from issuing a view load to applying or discarding it.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)
	AlertResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbinewatch_alert_resolutions_total",
			Help: "Alert resolve attempts by outcome.",
		},
		[]string{"outcome"},
	)
)
