package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		ordersCreated,
		orderAmount,
		cartReminders,
	)
}

var (
	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Persisted order rows (one per cart line item).",
		},
	)

	orderAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_group_amount",
			Help:    "Total amount per checkout.",
			Buckets: prometheus.ExponentialBuckets(10, 2.5, 10),
		},
	)

	cartReminders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_reminders_sent_total",
			Help: "Abandoned-cart reminders delivered.",
		},
	)
)

func OrderGroupPersisted(items int, total float64) {
	ordersCreated.Add(float64(items))
	orderAmount.Observe(total)
}

func CartReminderSent() { cartReminders.Inc() }
