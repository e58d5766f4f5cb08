package harvest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for traversal outcomes.
var (
	harvestMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vexrank_harvest_matches_total",
		Help: "Total matches that passed the validity filter",
	})

	harvestMatchesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vexrank_harvest_matches_skipped_total",
		Help: "Total matches discarded by the validity filter by reason",
	}, []string{"reason"})

	harvestBranchesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vexrank_harvest_branches_failed_total",
		Help: "Total traversal branches abandoned after retries by level",
	}, []string{"level"})
)
