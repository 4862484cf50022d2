package queries

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrCheckOrderOwnershipQueryIsNotConstructed = errors.New(
	"CheckOrderOwnershipQuery must be created via NewCheckOrderOwnershipQuery constructor",
)

// CheckOrderOwnershipQuery asks whether an order belongs to a customer.
type CheckOrderOwnershipQuery struct {
	orderID kernel.OrderID
	userID  int64

	guard guard.ConstructorGuard
}

func NewCheckOrderOwnershipQuery(orderID kernel.OrderID, userID int64) (CheckOrderOwnershipQuery, error) {
	if err := orderID.Validate(); err != nil {
		return CheckOrderOwnershipQuery{}, err
	}
	if userID <= 0 {
		return CheckOrderOwnershipQuery{}, errs.NewValueIsRequiredError("user id")
	}

	return CheckOrderOwnershipQuery{orderID: orderID, userID: userID, guard: guard.NewConstructorGuard()}, nil
}

func (q CheckOrderOwnershipQuery) Validate() error {
	return q.guard.Validate(ErrCheckOrderOwnershipQueryIsNotConstructed)
}

func (q CheckOrderOwnershipQuery) OrderID() kernel.OrderID {
	return q.orderID
}

func (q CheckOrderOwnershipQuery) UserID() int64 {
	return q.userID
}
