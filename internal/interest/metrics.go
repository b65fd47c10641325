// internal/interest/metrics.go

package interest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "interest_transitions_total",
		Help: "Interest state transitions by kind",
	},
	[]string{"transition"},
)

func recordTransition(transition string) {
	transitionsTotal.WithLabelValues(transition).Inc()
}
