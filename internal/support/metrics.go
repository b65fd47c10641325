// internal/support/metrics.go

package support

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var supportEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "support_requests_total",
		Help: "Help desk requests submitted and handled",
	},
	[]string{"event"},
)
