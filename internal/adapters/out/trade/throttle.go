package trade

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Throttled limits the call rate to a channel and records call latency.
// Sweeps and the refund pool share one limiter per provider, so a backlog
// cannot exceed the provider's rate quota.
type Throttled struct {
	next    Channel
	limiter *rate.Limiter
	metrics *metrics.OrderMetrics
}

func NewThrottled(next Channel, limiter *rate.Limiter, m *metrics.OrderMetrics) *Throttled {
	return &Throttled{next: next, limiter: limiter, metrics: m}
}

func (t *Throttled) Name() order.TradingChannel {
	return t.next.Name()
}

func (t *Throttled) Precreate(ctx context.Context, tradingOrderNo string, amount decimal.Decimal, subject string) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	qrCode, err := t.next.Precreate(ctx, tradingOrderNo, amount, subject)
	t.metrics.ObserveGatewayCall(t.Name().String(), "precreate", start, err)
	return qrCode, err
}

func (t *Throttled) Query(ctx context.Context, tradingOrderNo string) (ports.PaymentResult, error) {
	if err := t.wait(ctx); err != nil {
		return ports.PaymentResult{}, err
	}
	start := time.Now()
	result, err := t.next.Query(ctx, tradingOrderNo)
	t.metrics.ObserveGatewayCall(t.Name().String(), "query", start, err)
	return result, err
}

func (t *Throttled) Refund(ctx context.Context, tradingOrderNo, refundNo string, amount decimal.Decimal) (order.RefundResult, error) {
	if err := t.wait(ctx); err != nil {
		return order.RefundResult{}, err
	}
	start := time.Now()
	result, err := t.next.Refund(ctx, tradingOrderNo, refundNo, amount)
	t.metrics.ObserveGatewayCall(t.Name().String(), "refund", start, err)
	return result, err
}

func (t *Throttled) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return errs.NewDownstreamUnavailableError(t.Name().String(), err)
	}
	return nil
}
