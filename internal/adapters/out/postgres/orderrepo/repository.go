package orderrepo

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

var ErrTransitionIsEmpty = errors.New("transition writes no columns")

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := FromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves an order by id.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Int64()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return ToDomain(dto)
}

// ApplyTransition issues
//
//	UPDATE orders SET <changes> WHERE id = ? AND <guard>
//
// and reports whether the row was written. Concurrent callers racing on the
// same guard are serialized by the row lock: exactly one of them sees
// RowsAffected == 1.
func (r *GormOrderRepository) ApplyTransition(
	ctx context.Context,
	id kernel.OrderID,
	transition order.Transition,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	cols := changeColumns(transition.Changes)
	if len(cols) == 0 {
		return false, ErrTransitionIsEmpty
	}

	query := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Int64())
	clauses, args := guardClauses(transition.Guard)
	for i, clause := range clauses {
		query = query.Where(clause, args[i]...)
	}

	result := query.Updates(cols)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// FindOverdueUnpaid returns ids of unpaid orders created before createdBefore,
// oldest first.
func (r *GormOrderRepository) FindOverdueUnpaid(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]kernel.OrderID, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidError("limit")
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("status = ? AND pay_status = ? AND create_time < ?",
			int(order.StatusNoPay), int(order.PayStatusNoPay), createdBefore.UTC()).
		Order("create_time").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	result := make([]kernel.OrderID, 0, len(ids))
	for _, id := range ids {
		result = append(result, kernel.OrderID(id))
	}
	return result, nil
}
