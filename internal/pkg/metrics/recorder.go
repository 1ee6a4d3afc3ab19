package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder aggregates authentication and business counters. It is an
// explicitly owned instance registered against a prometheus.Registerer and
// passed by reference to the services that emit events, never accessed as
// ambient global state.
type Recorder struct {
	authAttempts     *prometheus.CounterVec
	pizzasSold       prometheus.Counter
	revenue          prometheus.Counter
	purchaseFailures prometheus.Counter
}

// NewRecorder creates a Recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "attempts_total",
				Help:      "Authentication attempts by result",
			},
			[]string{"result"},
		),
		pizzasSold: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "business",
				Name:      "pizzas_sold_total",
				Help:      "Total pizzas sold",
			},
		),
		revenue: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "business",
				Name:      "revenue_total",
				Help:      "Total revenue from placed orders",
			},
		),
		purchaseFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "business",
				Name:      "purchase_failures_total",
				Help:      "Total failed purchase attempts",
			},
		),
	}

	reg.MustRegister(r.authAttempts, r.pizzasSold, r.revenue, r.purchaseFailures)
	return r
}

// RecordAuthAttempt records a login or registration attempt.
func (r *Recorder) RecordAuthAttempt(success bool) {
	result := "failed"
	if success {
		result = "success"
	}
	r.authAttempts.WithLabelValues(result).Inc()
}

// RecordOrderPlaced records sold items and revenue for a completed order.
func (r *Recorder) RecordOrderPlaced(items int, revenue float64) {
	r.pizzasSold.Add(float64(items))
	r.revenue.Add(revenue)
}

// RecordPurchaseFailure records a failed purchase attempt.
func (r *Recorder) RecordPurchaseFailure() {
	r.purchaseFailures.Inc()
}
