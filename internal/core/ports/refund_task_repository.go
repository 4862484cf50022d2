package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// RefundTaskRepository is the durable queue of pending refunds, keyed by order.
type RefundTaskRepository interface {
	// Add enqueues a task. A second task for the same order is rejected.
	Add(ctx context.Context, task *order.RefundTask) error

	// Get returns the pending task of an order, or errs.ObjectNotFoundError.
	Get(ctx context.Context, orderID kernel.OrderID) (*order.RefundTask, error)

	// FetchBatch returns up to limit tasks, oldest first.
	FetchBatch(ctx context.Context, limit int) ([]*order.RefundTask, error)

	// Delete removes the task of an order. Deleting a missing task is not an error.
	Delete(ctx context.Context, orderID kernel.OrderID) error
}
