// internal/matching/metrics.go

package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	candidatesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_served_total",
			Help: "Total number of candidates served to viewers",
		},
	)

	emptySelections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_empty_selections_total",
			Help: "Total number of selections that found no eligible candidate",
		},
	)

	reactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_reactions_total",
			Help: "Total number of recorded reactions",
		},
		[]string{"type"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_matches_total",
			Help: "Total number of matches created",
		},
	)

	selectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_selection_duration_seconds",
			Help:    "Time spent selecting a candidate",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func recordCandidateServed() { candidatesServed.Inc() }
func recordEmptySelection()  { emptySelections.Inc() }
func recordMatch()           { matchesTotal.Inc() }

func recordReaction(isLike bool) {
	if isLike {
		reactionsTotal.WithLabelValues("like").Inc()
	} else {
		reactionsTotal.WithLabelValues("dislike").Inc()
	}
}

func observeSelectionDuration(start time.Time) {
	selectionDuration.Observe(time.Since(start).Seconds())
}
