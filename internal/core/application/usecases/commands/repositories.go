// Package commands contains the operations that change order state.
// All commands follow the same pattern: a constructor-validated command value,
// a handler owning its collaborators, and an explicit unit of work around
// every write.
package commands

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CancellationRepoFactory provides access to the cancellation audit trail.
	CancellationRepoFactory interface {
		CancellationRepository() ports.CancellationRepository
	}

	// RefundTaskRepoFactory provides access to the refund queue.
	RefundTaskRepoFactory interface {
		RefundTaskRepository() ports.RefundTaskRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW spans the order row, its cancellation records and its refund task.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   applied, err := uow.OrderRepository().ApplyTransition(ctx, id, t)
	//   err = uow.CancellationRepository().Add(ctx, record)
	//   err = uow.RefundTaskRepository().Add(ctx, task)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		CancellationRepoFactory
		RefundTaskRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-table operations.
	UoWFactory interface {
		Create() UoW
	}
)

// RefundDispatcher schedules an early refund attempt for a freshly closed
// order. It reports false when the attempt was dropped; the settlement sweep
// picks the task up later either way.
type RefundDispatcher interface {
	Dispatch(orderID kernel.OrderID) bool
}
