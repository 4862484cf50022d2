package cancellationrepo

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GormCancellationRepository implements ports.CancellationRepository using GORM.
type GormCancellationRepository struct {
	db *gorm.DB
}

func NewGormCancellationRepository(db *gorm.DB) *GormCancellationRepository {
	return &GormCancellationRepository{db: db}
}

func (r *GormCancellationRepository) Add(ctx context.Context, record *order.CancellationRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListByOrder returns the records of an order in the order they were written.
func (r *GormCancellationRepository) ListByOrder(
	ctx context.Context,
	orderID kernel.OrderID,
) ([]*order.CancellationRecord, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []CancellationDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Int64()).
		Order("canceled_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*order.CancellationRecord, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
