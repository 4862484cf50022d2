package trade

import (
	"context"
	"fmt"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/jaevor/go-nanoid"
)

// Trading order numbers are the order id plus a random suffix, which keeps
// them within the 32 characters WeChat Pay accepts and unique per charge.
const (
	tradingSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	tradingSuffixLength   = 12
)

var (
	_ ports.PaymentGateway = (*Router)(nil)
	_ ports.RefundGateway  = (*Router)(nil)
)

// Router dispatches gateway calls to the channel named by the request.
type Router struct {
	channels  map[order.TradingChannel]Channel
	newSuffix func() string
}

func NewRouter(channels ...Channel) (*Router, error) {
	newSuffix, err := nanoid.CustomASCII(tradingSuffixAlphabet, tradingSuffixLength)
	if err != nil {
		return nil, err
	}

	r := &Router{
		channels:  make(map[order.TradingChannel]Channel, len(channels)),
		newSuffix: newSuffix,
	}
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		r.channels[ch.Name()] = ch
	}
	return r, nil
}

// CreateCharge mints a fresh trading order number and opens a charge for it.
// Each call opens a new charge: the previous one, if any, simply expires
// unpaid at the provider.
func (r *Router) CreateCharge(ctx context.Context, req ports.ChargeRequest) (ports.Charge, error) {
	ch, err := r.channel(req.Channel)
	if err != nil {
		return ports.Charge{}, err
	}

	no := req.OrderID.String() + r.newSuffix()
	qrCode, err := ch.Precreate(ctx, no, req.Amount, req.Subject)
	if err != nil {
		return ports.Charge{}, err
	}

	return ports.Charge{TradingOrderNo: no, Channel: req.Channel, QRCode: qrCode}, nil
}

func (r *Router) QueryResult(ctx context.Context, channel order.TradingChannel, tradingOrderNo string) (ports.PaymentResult, error) {
	ch, err := r.channel(channel)
	if err != nil {
		return ports.PaymentResult{}, err
	}
	if tradingOrderNo == "" {
		return ports.PaymentResult{}, errs.NewValueIsRequiredError("trading order no")
	}

	result, err := ch.Query(ctx, tradingOrderNo)
	if err != nil {
		return ports.PaymentResult{}, err
	}
	result.TradingOrderNo = tradingOrderNo
	result.Channel = channel
	return result, nil
}

// Refund always refunds under RefundNo(orderID), so retries of the same task
// are deduplicated by the provider.
func (r *Router) Refund(ctx context.Context, req ports.RefundRequest) (order.RefundResult, error) {
	ch, err := r.channel(req.Channel)
	if err != nil {
		return order.RefundResult{}, err
	}

	refundNo := RefundNo(req.OrderID)
	result, err := ch.Refund(ctx, req.TradingOrderNo, refundNo, req.Amount)
	if err != nil {
		return order.RefundResult{}, err
	}
	if result.RefundNo == "" {
		result.RefundNo = refundNo
	}
	return result, nil
}

// RefundNo is the merchant-side refund number of an order.
func RefundNo(id kernel.OrderID) string {
	return "R" + id.String()
}

func (r *Router) channel(name order.TradingChannel) (Channel, error) {
	ch, ok := r.channels[name]
	if !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("trading channel", fmt.Errorf("%q is not configured", name.String()))
	}
	return ch, nil
}
