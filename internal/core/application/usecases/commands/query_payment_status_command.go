package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/guard"
)

var ErrQueryPaymentStatusCommandIsNotConstructed = errors.New(
	"QueryPaymentStatusCommand must be created via NewQueryPaymentStatusCommand constructor",
)

// QueryPaymentStatusCommand asks the gateway whether an unpaid order has been
// paid meanwhile, and records the payment if so. It is a command because a
// positive answer changes the order.
type QueryPaymentStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID

	guard guard.ConstructorGuard
}

func NewQueryPaymentStatusCommand(orderID kernel.OrderID) (QueryPaymentStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return QueryPaymentStatusCommand{}, err
	}
	return QueryPaymentStatusCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c QueryPaymentStatusCommand) Validate() error {
	return c.guard.Validate(ErrQueryPaymentStatusCommandIsNotConstructed)
}

func (c QueryPaymentStatusCommand) OrderID() kernel.OrderID {
	return c.orderID
}

// PaymentStatus is the order's payment state after the poll.
type PaymentStatus struct {
	OrderID        kernel.OrderID
	UserID         int64
	PayStatus      order.PayStatus
	TradingOrderNo string
	Channel        order.TradingChannel
}
