// internal/block/metrics.go

package block

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blockEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "moderation_user_actions_total",
		Help: "Block, unblock and report actions taken by users",
	},
	[]string{"action"},
)
