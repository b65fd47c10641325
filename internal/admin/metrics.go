// internal/admin/metrics.go

package admin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var adminActions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_actions_total",
		Help: "Admin console actions",
	},
	[]string{"action"},
)
