// internal/recommend/metrics.go

package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"source"},
	)

	recommendationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_errors_total",
			Help: "Total number of recommendation computations swallowed into an empty result",
		},
	)

	candidateSetSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidate_set_size",
			Help:    "Size of the merged candidate set before scoring",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_total",
			Help: "Recommendation cache hits and misses",
		},
		[]string{"result"},
	)
)
