package commands

import (
	"errors"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand represents a cancellation request by a customer, an
// operator or the system.
//
// Example:
//
//	actor, _ := kernel.NewActor(1001, "Li", kernel.ActorTypeUser)
//	cmd, err := NewCancelOrderCommand(orderID, actor, "plans changed")
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.OrderID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.OrderID, actor kernel.Actor, reason string) (CancelOrderCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := actor.Validate(); err != nil {
		errList = append(errList, err)
	}
	if strings.TrimSpace(reason) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("reason"))
	}
	if err := errors.Join(errList...); err != nil {
		return CancelOrderCommand{}, err
	}

	return CancelOrderCommand{
		orderID: orderID,
		actor:   actor,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.OrderID {
	return c.orderID
}

func (c CancelOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}
