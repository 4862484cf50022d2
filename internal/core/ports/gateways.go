package ports

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// TradeState is the payment gateway's view of a charge.
type TradeState string

const (
	TradeStateUnpaid  TradeState = "UNPAID"
	TradeStatePaying  TradeState = "PAYING"
	TradeStatePaid    TradeState = "PAID"
	TradeStateClosed  TradeState = "CLOSED"
	TradeStateUnknown TradeState = "UNKNOWN"
)

type ChargeRequest struct {
	OrderID kernel.OrderID
	Channel order.TradingChannel
	Amount  decimal.Decimal
	Subject string
}

// Charge is a created but unpaid charge. QRCode is what the customer scans.
type Charge struct {
	TradingOrderNo string
	Channel        order.TradingChannel
	QRCode         string
}

type PaymentResult struct {
	TradingOrderNo string
	Channel        order.TradingChannel
	State          TradeState
	TransactionID  string
	PaidAt         time.Time
}

// PaymentGateway creates charges and reports their outcome. Implementations
// wrap every transport failure in errs.DownstreamUnavailableError.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error)
	QueryResult(ctx context.Context, channel order.TradingChannel, tradingOrderNo string) (PaymentResult, error)
}

type RefundRequest struct {
	OrderID        kernel.OrderID
	TradingOrderNo string
	Channel        order.TradingChannel
	Amount         decimal.Decimal
}

// RefundGateway refunds a charge. Repeating a request for the same trading
// order number must not refund twice.
type RefundGateway interface {
	Refund(ctx context.Context, req RefundRequest) (order.RefundResult, error)
}
