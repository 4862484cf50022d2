// Package queries contains read-only operations over orders.
// Queries read rows directly through GORM instead of loading aggregates.
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

// ListOrdersPageSize is the number of orders returned per page.
const ListOrdersPageSize = 10

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery pages through a customer's orders, newest service first.
// Paging is keyset based: the next page starts below the SortBy of the last
// order of the previous page.
//
// Example:
//
//	query, _ := NewListOrdersQuery(1001, nil, 0)
//	page, err := handler.Handle(ctx, query)
//	if len(page) == ListOrdersPageSize {
//	    next, _ := NewListOrdersQuery(1001, nil, page[len(page)-1].SortBy)
//	    ...
//	}
type ListOrdersQuery struct {
	userID int64
	status *order.Status
	cursor int64

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates the query. status is nil for all statuses and
// cursor is 0 for the first page.
func NewListOrdersQuery(userID int64, status *order.Status, cursor int64) (ListOrdersQuery, error) {
	if userID <= 0 {
		return ListOrdersQuery{}, errs.NewValueIsRequiredError("user id")
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}
	if cursor < 0 {
		return ListOrdersQuery{}, errs.NewValueIsInvalidError("cursor")
	}

	return ListOrdersQuery{
		userID: userID,
		status: status,
		cursor: cursor,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) UserID() int64 {
	return q.userID
}

// Status is nil when the list is not filtered by status.
func (q ListOrdersQuery) Status() *order.Status {
	return q.status
}

// Cursor is the sort key of the last order of the previous page, or zero.
func (q ListOrdersQuery) Cursor() int64 {
	return q.cursor
}

// OrderSummary is one line of the order list.
type OrderSummary struct {
	ID             kernel.OrderID
	ServeItemName  string
	ServeTypeName  string
	ServeAddress   string
	ServeStartTime time.Time
	Quantity       int
	RealPayAmount  decimal.Decimal
	Status         order.Status
	PayStatus      order.PayStatus
	RefundStatus   order.RefundStatus
	SortBy         int64
	CreateTime     time.Time
}
