package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrRequestPaymentCommandIsNotConstructed = errors.New(
	"RequestPaymentCommand must be created via NewRequestPaymentCommand constructor",
)

// RequestPaymentCommand asks for a charge on the given channel so that the
// customer can pay an order.
type RequestPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	userID  int64
	channel order.TradingChannel

	guard guard.ConstructorGuard
}

func NewRequestPaymentCommand(
	orderID kernel.OrderID,
	userID int64,
	channel order.TradingChannel,
) (RequestPaymentCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if userID <= 0 {
		errList = append(errList, errs.NewValueIsRequiredError("user id"))
	}
	if err := channel.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return RequestPaymentCommand{}, err
	}

	return RequestPaymentCommand{
		orderID: orderID,
		userID:  userID,
		channel: channel,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RequestPaymentCommand) Validate() error {
	return c.guard.Validate(ErrRequestPaymentCommandIsNotConstructed)
}

func (c RequestPaymentCommand) OrderID() kernel.OrderID {
	return c.orderID
}

func (c RequestPaymentCommand) UserID() int64 {
	return c.userID
}

func (c RequestPaymentCommand) Channel() order.TradingChannel {
	return c.channel
}

// PaymentTicket is what the customer needs to pay: the charge reference and
// the QR code to scan. QRCode is empty when the order is already paid.
type PaymentTicket struct {
	OrderID        kernel.OrderID
	TradingOrderNo string
	Channel        order.TradingChannel
	QRCode         string
	PayStatus      order.PayStatus
}
