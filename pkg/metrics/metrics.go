package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts snapshot cache reads by result (hit|miss|stale|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_cache_lookups_total",
			Help: "Total number of snapshot cache lookups",
		},
		[]string{"result"},
	)

	// CacheWrites counts snapshot cache writes by result (ok|error).
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_cache_writes_total",
			Help: "Total number of snapshot cache writes",
		},
		[]string{"result"},
	)

	// BackendRequests counts calls to the weather backend by endpoint and status code.
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_backend_requests_total",
			Help: "Total number of requests issued to the weather backend",
		},
		[]string{"endpoint", "status"},
	)

	// DashboardLoadDuration measures a full dashboard load.
	DashboardLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_dashboard_load_seconds",
			Help:    "Dashboard load latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)
