package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// CancellationRepository stores the append-only cancellation audit trail.
type CancellationRepository interface {
	Add(ctx context.Context, record *order.CancellationRecord) error
	ListByOrder(ctx context.Context, orderID kernel.OrderID) ([]*order.CancellationRecord, error)
}
