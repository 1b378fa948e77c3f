package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type hubMetrics struct {
	connections  prometheus.Gauge
	events       *prometheus.CounterVec
	delivered    prometheus.Counter
	sendFailures prometheus.Counter
}

func newHubMetrics(reg prometheus.Registerer) *hubMetrics {
	// promauto.With(nil) builds collectors without registering them
	factory := promauto.With(reg)
	return &hubMetrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "munhub_ws_connections",
			Help: "Number of live committee websocket connections",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "munhub_ws_events_total",
			Help: "Total number of events fanned out, by event type",
		}, []string{"type"}),
		delivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "munhub_ws_messages_delivered_total",
			Help: "Total number of event messages written to clients",
		}),
		sendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "munhub_ws_send_failures_total",
			Help: "Total number of failed sends that pruned a connection",
		}),
	}
}
