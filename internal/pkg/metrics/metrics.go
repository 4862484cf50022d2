// Package metrics holds the Prometheus instruments of the order service.
//
// All Record* methods are safe on a nil *OrderMetrics so that handlers built in
// tests without a registry keep working.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

type OrderMetrics struct {
	OrdersPlacedTotal         *prometheus.CounterVec
	TransitionsTotal          *prometheus.CounterVec
	PaymentConfirmations      *prometheus.CounterVec
	RefundSettlementsTotal    *prometheus.CounterVec
	RefundDispatchDropped     prometheus.Counter
	SweepBatchSize            *prometheus.HistogramVec
	GatewayRequestDuration    *prometheus.HistogramVec
	StateInconsistenciesTotal *prometheus.CounterVec
}

// NewOrderMetrics registers the instruments on reg. Passing
// prometheus.DefaultRegisterer exposes them through promhttp.Handler.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	factory := promauto.With(reg)

	return &OrderMetrics{
		OrdersPlacedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_placed_total",
				Help: "Orders created, by whether a coupon was applied",
			},
			[]string{"coupon"},
		),

		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Conditional order transitions, by transition and outcome (applied/skipped)",
			},
			[]string{"transition", "outcome"},
		),

		PaymentConfirmations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_payment_confirmations_total",
				Help: "Payment confirmations processed, by source (event/poll) and outcome",
			},
			[]string{"source", "outcome"},
		),

		RefundSettlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_refund_settlements_total",
				Help: "Refund gateway results, by mapped outcome",
			},
			[]string{"outcome"},
		),

		RefundDispatchDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "order_refund_dispatch_dropped_total",
				Help: "First refund attempts dropped because the worker pool queue was full",
			},
		),

		SweepBatchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_sweep_batch_size",
				Help:    "Number of rows picked up by one run of a periodic sweep",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
			[]string{"sweep"},
		),

		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_gateway_request_duration_seconds",
				Help:    "Latency of payment and refund gateway calls",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"channel", "operation", "result"},
		),

		StateInconsistenciesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_state_inconsistencies_total",
				Help: "Observed combinations of order fields that should not occur",
			},
			[]string{"kind"},
		),
	}
}

func (m *OrderMetrics) RecordOrderPlaced(withCoupon bool) {
	if m == nil {
		return
	}
	label := "false"
	if withCoupon {
		label = "true"
	}
	m.OrdersPlacedTotal.WithLabelValues(label).Inc()
}

// RecordTransition counts one conditional write; applied=false means the
// predicate matched no row.
func (m *OrderMetrics) RecordTransition(transition string, applied bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSkipped
	if applied {
		outcome = OutcomeApplied
	}
	m.TransitionsTotal.WithLabelValues(transition, outcome).Inc()
}

func (m *OrderMetrics) RecordPaymentConfirmation(source, outcome string) {
	if m == nil {
		return
	}
	m.PaymentConfirmations.WithLabelValues(source, outcome).Inc()
}

func (m *OrderMetrics) RecordRefundSettlement(outcome string) {
	if m == nil {
		return
	}
	m.RefundSettlementsTotal.WithLabelValues(outcome).Inc()
}

func (m *OrderMetrics) RecordRefundDispatchDropped() {
	if m == nil {
		return
	}
	m.RefundDispatchDropped.Inc()
}

func (m *OrderMetrics) RecordSweep(sweep string, size int) {
	if m == nil {
		return
	}
	m.SweepBatchSize.WithLabelValues(sweep).Observe(float64(size))
}

// ObserveGatewayCall records the time elapsed since start.
func (m *OrderMetrics) ObserveGatewayCall(channel, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = OutcomeError
	}
	m.GatewayRequestDuration.WithLabelValues(channel, operation, result).Observe(time.Since(start).Seconds())
}

func (m *OrderMetrics) RecordInconsistency(kind string) {
	if m == nil {
		return
	}
	m.StateInconsistenciesTotal.WithLabelValues(kind).Inc()
}
