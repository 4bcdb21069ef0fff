package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records verification outcomes for the reconciliation bridge.
type PaymentMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_verify_duration_seconds",
		Help:    "Duration of payment verification calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verify_outcomes",
		Help: "Payment verification outcomes by result.",
	}, []string{"outcome"})
	reg.MustRegister(duration, outcomes)
	return &PaymentMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveDuration records the duration of one verification call.
func (p *PaymentMetrics) ObserveDuration(method string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncOutcome increments the counter for the named verification outcome.
func (p *PaymentMetrics) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
