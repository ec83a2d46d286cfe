// Package metrics holds the Prometheus collectors of hitmap.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hitmap"

// Conversion metrics.
var (
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Total number of hit to domain object conversions",
		},
		[]string{"type", "status"},
	)

	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Hit conversion duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"type"},
	)
)

// Search metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests sent to the backend",
		},
		[]string{"index", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	SearchHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits_returned",
			Help:      "Number of hits carried by a search response",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"index"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ConversionsTotal,
			ConversionDuration,
			SearchRequestsTotal,
			SearchRequestDuration,
			SearchHitsReturned,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
