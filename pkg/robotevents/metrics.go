package robotevents

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for API transport operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vexrank_api_requests_total",
		Help: "Total RobotEvents API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vexrank_api_request_duration_seconds",
		Help:    "RobotEvents API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apiRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vexrank_api_retries_total",
		Help: "Total retry attempts by endpoint",
	}, []string{"endpoint"})

	apiRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vexrank_api_rate_limited_total",
		Help: "Total 429 responses received from the API",
	})
)
