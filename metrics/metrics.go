package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kats_orders_submitted_total",
			Help: "Total number of orders submitted (by side).",
		},
		[]string{"side"},
	)

	BuySkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kats_buy_skips_total",
			Help: "Buy attempts skipped before submission (by reason).",
		},
		[]string{"reason"},
	)

	RateLimitedFetches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kats_fetch_rate_limited_total",
			Help: "Bar fetches aborted because the provider throttled us.",
		},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kats_positions_open",
			Help: "Current number of open positions.",
		},
	)

	SellTriggers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kats_sell_triggers_total",
			Help: "Sell signals raised by the risk manager (by reason).",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, BuySkips, RateLimitedFetches, PositionsOpen, SellTriggers)
}
