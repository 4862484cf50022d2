package refundrepo

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRefundTaskRepository implements ports.RefundTaskRepository using GORM.
type GormRefundTaskRepository struct {
	db *gorm.DB
}

func NewGormRefundTaskRepository(db *gorm.DB) *GormRefundTaskRepository {
	return &GormRefundTaskRepository{db: db}
}

// Add enqueues a task. The order id is the primary key, so a second task for
// the same order fails with a duplicate key error.
func (r *GormRefundTaskRepository) Add(ctx context.Context, task *order.RefundTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	dto := fromDomain(task)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormRefundTaskRepository) Get(ctx context.Context, orderID kernel.OrderID) (*order.RefundTask, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto RefundTaskDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Int64()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("refund task", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FetchBatch returns up to limit tasks, oldest first.
func (r *GormRefundTaskRepository) FetchBatch(ctx context.Context, limit int) ([]*order.RefundTask, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidError("limit")
	}

	var dtos []RefundTaskDTO
	if err := r.db.WithContext(ctx).Order("create_time").Limit(limit).Find(&dtos).Error; err != nil {
		return nil, err
	}

	tasks := make([]*order.RefundTask, 0, len(dtos))
	for _, dto := range dtos {
		task, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Delete removes the task of an order if there is one.
func (r *GormRefundTaskRepository) Delete(ctx context.Context, orderID kernel.OrderID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Delete(&RefundTaskDTO{}, "order_id = ?", orderID.Int64()).Error
}
