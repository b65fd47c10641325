// internal/profile/metrics.go

package profile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	profileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_information_writes_total",
			Help: "Profile information saves and partial updates",
		},
		[]string{"kind"},
	)

	discoveryResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_results",
			Help:    "Number of compatible users returned per discovery request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)
)
