package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout outcomes and latency.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	placed    prometheus.Counter
	failed    *prometheus.CounterVec
	unitsSold prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Successfully placed parent orders.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Failed checkout attempts by reason.",
	}, []string{"reason"})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "units_sold_total",
		Help: "Total stock units decremented by successful checkouts.",
	})
	reg.MustRegister(duration, placed, failed, unitsSold)
	return &CheckoutMetrics{
		duration:  duration,
		placed:    placed,
		failed:    failed,
		unitsSold: unitsSold,
	}
}

// ObserveDuration records the duration of one checkout attempt.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncPlaced increments the placed-order counter.
func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncFailed increments the failure counter for the given reason.
func (c *CheckoutMetrics) IncFailed(reason string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// AddUnitsSold adds the number of units committed by a successful checkout.
func (c *CheckoutMetrics) AddUnitsSold(units int) {
	if c == nil || c.unitsSold == nil || units <= 0 {
		return
	}
	c.unitsSold.Add(float64(units))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
