// Package metrics provides the Prometheus registry and HTTP exposition for
// vexrank. Collectors are defined in the packages that own them (robotevents,
// cache, harvest, rating) to avoid circular dependencies; this package
// documents them and serves the /metrics endpoint when enabled.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vexrank/pkg/config"
	"vexrank/pkg/logger"
)

// Registry is the default Prometheus registry used by vexrank.
// All collectors are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Transport metrics (pkg/robotevents):
//   - vexrank_api_requests_total{endpoint, status} (Counter): API requests by endpoint and HTTP status
//   - vexrank_api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - vexrank_api_retries_total{endpoint} (Counter): Retry attempts by endpoint
//   - vexrank_api_rate_limited_total (Counter): 429 responses observed
//
// Cache metrics (pkg/cache):
//   - vexrank_cache_hits_total{backend} (Counter): Cache hits by backend
//   - vexrank_cache_misses_total (Counter): Cache misses
//   - vexrank_cache_errors_total{operation} (Counter): Cache operation errors
//
// Harvest metrics (pkg/harvest):
//   - vexrank_harvest_matches_total (Counter): Matches accepted into the stream
//   - vexrank_harvest_matches_skipped_total{reason} (Counter): Matches rejected by the validity filter
//   - vexrank_harvest_branches_failed_total{level} (Counter): Failed harvest branches by tree level
//
// Rating metrics (pkg/rating):
//   - vexrank_rating_updates_total (Counter): Match results applied to the engine
//
// Example Prometheus Queries:
//
//	# Cache hit rate
//	sum(rate(vexrank_cache_hits_total[5m])) /
//	(sum(rate(vexrank_cache_hits_total[5m])) + sum(rate(vexrank_cache_misses_total[5m])))
//
//	# P95 request latency
//	histogram_quantile(0.95, rate(vexrank_api_request_duration_seconds_bucket[5m]))
//
//	# Rate limit pressure
//	rate(vexrank_api_rate_limited_total[5m])

// Server exposes the registry over HTTP for scraping during long harvests.
type Server struct {
	srv *http.Server
	log logger.Logger
}

// NewServer builds a metrics server listening on the configured address.
func NewServer(cfg *config.MetricsConfig, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves in the background. Listen failures are logged, not returned:
// a broken metrics listener must not stop a harvest.
func (s *Server) Start() {
	go func() {
		s.log.InfoWithFields("Metrics server listening", map[string]interface{}{
			"addr": s.srv.Addr,
		})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.ErrorWithFields("Metrics server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}

// Shutdown stops the server, waiting for in-flight scrapes up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the exposition handler, for embedding into another mux.
func Handler() http.Handler {
	return promhttp.Handler()
}
