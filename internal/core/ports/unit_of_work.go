package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is an explicit transaction boundary. Repositories obtained after
// Begin share its transaction; Commit makes all of their writes visible at once.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	CancellationRepository() CancellationRepository
	RefundTaskRepository() RefundTaskRepository
}
