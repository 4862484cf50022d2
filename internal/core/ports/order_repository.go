// Package ports defines the contracts between the order core and its
// infrastructure: persistence, identifier minting, gateways and collaborators.
package ports

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Orders are never deleted, and after creation they only change through
// ApplyTransition.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.OrderID) (*order.Order, error)

	// ApplyTransition performs the transition as one conditional UPDATE on the
	// order row: the guard becomes part of the WHERE clause.
	//
	// Returns:
	//   - true when the row matched and was written
	//   - false, nil when the guard did not match (already handled elsewhere)
	//   - error only for storage failures
	ApplyTransition(ctx context.Context, id kernel.OrderID, transition order.Transition) (bool, error)

	// FindOverdueUnpaid returns up to limit ids of orders in NO_PAY/NO_PAY
	// created before createdBefore, oldest first.
	FindOverdueUnpaid(ctx context.Context, createdBefore time.Time, limit int) ([]kernel.OrderID, error)
}
