// internal/messaging/metrics.go

package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Messages stored by payload kind",
		},
		[]string{"kind"},
	)

	callEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_signalling_events_total",
			Help: "Call signalling updates by event",
		},
		[]string{"event"},
	)

	pollOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_polls_total",
			Help: "Long-poll requests by outcome",
		},
		[]string{"outcome"},
	)
)
