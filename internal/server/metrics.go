package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors the server updates as the
// simulation advances.
type metrics struct {
	stepsTotal     prometheus.Counter
	eventsTotal    prometheus.Counter
	tradesTotal    prometheus.Counter
	volumeTotal    prometheus.Counter
	restingOrders  prometheus.Gauge
	lastTradePrice prometheus.Gauge
	spread         prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mms_steps_total",
			Help: "Simulation steps executed.",
		}),
		eventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mms_events_total",
			Help: "Agent events processed by the matching engine.",
		}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mms_trades_total",
			Help: "Trades emitted by the matching engine.",
		}),
		volumeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mms_volume_total",
			Help: "Total traded quantity.",
		}),
		restingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mms_resting_orders",
			Help: "Orders currently resting in the book.",
		}),
		lastTradePrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mms_last_trade_price",
			Help: "Most recent trade price in ticks.",
		}),
		spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mms_spread",
			Help: "Current bid-ask spread in ticks, 0 when one-sided.",
		}),
	}
	reg.MustRegister(
		m.stepsTotal,
		m.eventsTotal,
		m.tradesTotal,
		m.volumeTotal,
		m.restingOrders,
		m.lastTradePrice,
		m.spread,
	)
	return m
}
