package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhookMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagw_webhook_messages_total",
			Help: "Inbound webhook messages by type and outcome",
		},
		[]string{"type", "outcome"}, // text|image|... , processed|failed
	)

	SendAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagw_send_attempts_total",
			Help: "Outbound delivery attempts by result classification",
		},
		[]string{"result"}, // success | validation | rate_limited | server_error | ...
	)

	BroadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wagw_broadcast_deliveries_total",
			Help: "Broadcast recipient deliveries by outcome",
		},
		[]string{"outcome"}, // delivered | failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		WebhookMessagesTotal,
		SendAttemptsTotal,
		BroadcastDeliveriesTotal,
	)
}
