package commands

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a customer buying a quantity of one service
// offer, delivered to one of their saved addresses.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(1001, 7, 3, start, 2, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	id, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	userID         int64
	serveID        int64
	addressID      int64
	serveStartTime time.Time
	quantity       int
	couponID       int64

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the request. couponID is 0 when no coupon is used.
func NewPlaceOrderCommand(
	userID, serveID, addressID int64,
	serveStartTime time.Time,
	quantity int,
	couponID int64,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		userID:         userID,
		serveID:        serveID,
		addressID:      addressID,
		serveStartTime: serveStartTime,
		quantity:       quantity,
		couponID:       couponID,
		guard:          guard.NewConstructorGuard(),
	}

	var errList []error
	if userID <= 0 {
		errList = append(errList, errs.NewValueIsRequiredError("user id"))
	}
	if serveID <= 0 {
		errList = append(errList, errs.NewValueIsRequiredError("serve id"))
	}
	if addressID <= 0 {
		errList = append(errList, errs.NewValueIsRequiredError("address id"))
	}
	if serveStartTime.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("serve start time"))
	}
	if quantity < 1 || quantity > order.MaxQuantity {
		errList = append(errList, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, order.MaxQuantity))
	}
	if couponID < 0 {
		errList = append(errList, errs.NewValueIsInvalidError("coupon id"))
	}
	if err := errors.Join(errList...); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) UserID() int64 {
	return c.userID
}

func (c PlaceOrderCommand) ServeID() int64 {
	return c.serveID
}

func (c PlaceOrderCommand) AddressID() int64 {
	return c.addressID
}

func (c PlaceOrderCommand) ServeStartTime() time.Time {
	return c.serveStartTime
}

func (c PlaceOrderCommand) Quantity() int {
	return c.quantity
}

// CouponID returns the coupon to redeem, or 0.
func (c PlaceOrderCommand) CouponID() int64 {
	return c.couponID
}
