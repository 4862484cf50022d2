// Package trade talks to the payment providers. Router implements the payment
// and refund gateway ports on top of one Channel per provider.
package trade

import (
	"context"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Channel is one payment provider.
//
// Implementations return errs.DownstreamUnavailableError for transport
// failures and provider-side system errors. A charge the provider does not
// know yet is reported as ports.TradeStateUnpaid, not as an error.
type Channel interface {
	Name() order.TradingChannel

	// Precreate opens a QR-code charge and returns the code to show.
	Precreate(ctx context.Context, tradingOrderNo string, amount decimal.Decimal, subject string) (string, error)

	// Query returns the current state of a charge.
	Query(ctx context.Context, tradingOrderNo string) (ports.PaymentResult, error)

	// Refund refunds amount of the charge. Repeating the call with the same
	// refundNo refunds at most once.
	Refund(ctx context.Context, tradingOrderNo, refundNo string, amount decimal.Decimal) (order.RefundResult, error)
}
