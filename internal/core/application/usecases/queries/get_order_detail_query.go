package queries

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderDetailQueryIsNotConstructed = errors.New(
	"GetOrderDetailQuery must be created via NewGetOrderDetailQuery constructor",
)

// GetOrderDetailQuery reads one order of a customer.
type GetOrderDetailQuery struct {
	orderID kernel.OrderID
	userID  int64

	guard guard.ConstructorGuard
}

func NewGetOrderDetailQuery(orderID kernel.OrderID, userID int64) (GetOrderDetailQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderDetailQuery{}, err
	}
	if userID <= 0 {
		return GetOrderDetailQuery{}, errs.NewValueIsRequiredError("user id")
	}

	return GetOrderDetailQuery{orderID: orderID, userID: userID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderDetailQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderDetailQueryIsNotConstructed)
}

// OrderDetail is the full view of an order. Cancellation is set once the
// order has been canceled or closed.
type OrderDetail struct {
	ID             kernel.OrderID
	UserID         int64
	ServeID        int64
	ServeItemName  string
	ServeTypeName  string
	CityCode       string
	ServeAddress   string
	ContactsName   string
	ContactsPhone  string
	ServeStartTime time.Time
	Price          decimal.Decimal
	Quantity       int
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	RealPayAmount  decimal.Decimal
	Status         order.Status
	PayStatus      order.PayStatus
	RefundStatus   order.RefundStatus
	TradingOrderNo string
	TradingChannel order.TradingChannel
	TransactionID  string
	PayTime        *time.Time
	RefundNo       string
	CreateTime     time.Time

	// PaymentDeadline is when an unpaid order gets canceled.
	PaymentDeadline time.Time

	Cancellation *CancellationDetail
}

type CancellationDetail struct {
	Reason     string
	ActorName  string
	ActorType  kernel.ActorType
	CanceledAt time.Time
}
