package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrSettleRefundsCommandIsNotConstructed = errors.New(
		"SettleRefundsCommand must be created via NewSettleRefundsCommand constructor",
	)
	ErrDispatchRefundCommandIsNotConstructed = errors.New(
		"DispatchRefundCommand must be created via NewDispatchRefundCommand constructor",
	)
)

// SettleRefundsCommand drains up to BatchSize queued refunds.
type SettleRefundsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewSettleRefundsCommand(batchSize int) (SettleRefundsCommand, error) {
	if batchSize <= 0 {
		return SettleRefundsCommand{}, errs.NewValueIsInvalidError("batch size")
	}
	return SettleRefundsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c SettleRefundsCommand) Validate() error {
	return c.guard.Validate(ErrSettleRefundsCommandIsNotConstructed)
}

func (c SettleRefundsCommand) BatchSize() int {
	return c.batchSize
}

// SettleRefundsReport counts what a sweep did with the fetched tasks.
type SettleRefundsReport struct {
	Fetched int
	Settled int
	Pending int
	Failed  int
}

// DispatchRefundCommand runs the first refund attempt of one order right
// after it was closed.
type DispatchRefundCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID

	guard guard.ConstructorGuard
}

func NewDispatchRefundCommand(orderID kernel.OrderID) (DispatchRefundCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DispatchRefundCommand{}, err
	}
	return DispatchRefundCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c DispatchRefundCommand) Validate() error {
	return c.guard.Validate(ErrDispatchRefundCommandIsNotConstructed)
}

func (c DispatchRefundCommand) OrderID() kernel.OrderID {
	return c.orderID
}
