package queries

import (
	"context"

	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

// CheckOrderOwnershipQueryHandler reads the owner of an order and nothing
// else. Unlike GetOrderDetailQueryHandler it never polls the gateway or
// expires the order, so it is safe to run before a command.
type CheckOrderOwnershipQueryHandler struct {
	db *gorm.DB
}

func NewCheckOrderOwnershipQueryHandler(db *gorm.DB) CheckOrderOwnershipQueryHandler {
	return CheckOrderOwnershipQueryHandler{db: db}
}

// Handle returns ObjectNotFoundError when the order does not exist or belongs
// to another customer.
func (h CheckOrderOwnershipQueryHandler) Handle(ctx context.Context, query CheckOrderOwnershipQuery) error {
	if err := query.Validate(); err != nil {
		return err
	}

	var owner int64
	result := h.db.WithContext(ctx).Raw(
		`SELECT user_id FROM orders WHERE id = ?`, query.orderID.Int64(),
	).Scan(&owner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 || owner != query.userID {
		return errs.NewObjectNotFoundError("order", query.orderID.String())
	}
	return nil
}
