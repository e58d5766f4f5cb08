package rating

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ratingUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vexrank_rating_updates_total",
	Help: "Total match results applied to the skill model",
})
