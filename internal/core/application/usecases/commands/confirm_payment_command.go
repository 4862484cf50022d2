package commands

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// Sources a payment confirmation can come from.
const (
	PaymentSourceEvent = "event"
	PaymentSourcePoll  = "poll"
)

// ConfirmPaymentCommand carries a successful payment result for an order.
// Field checks beyond the order id happen against the order itself, so that
// an already paid order accepts a malformed duplicate silently.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	payment order.Payment
	source  string

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(
	orderID kernel.OrderID,
	tradingOrderNo string,
	channel order.TradingChannel,
	transactionID string,
	paidAt time.Time,
	source string,
) (ConfirmPaymentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return ConfirmPaymentCommand{
		orderID: orderID,
		payment: order.Payment{
			TradingOrderNo: tradingOrderNo,
			Channel:        channel,
			TransactionID:  transactionID,
			PaidAt:         paidAt,
		},
		source: source,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() kernel.OrderID {
	return c.orderID
}

func (c ConfirmPaymentCommand) Payment() order.Payment {
	return c.payment
}

// Source is PaymentSourceEvent or PaymentSourcePoll; used for metrics only.
func (c ConfirmPaymentCommand) Source() string {
	return c.source
}
