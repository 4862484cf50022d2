// Package cancellationrepo stores the cancellation audit trail. Records are
// only ever inserted.
package cancellationrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type CancellationDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      int64     `gorm:"not null;index"`
	ActorID      int64
	ActorName    string    `gorm:"size:64"`
	ActorType    int       `gorm:"not null"`
	Reason       string    `gorm:"size:256;not null"`
	OriginStatus int       `gorm:"not null"`
	CanceledAt   time.Time `gorm:"not null"`
}

func (CancellationDTO) TableName() string {
	return "orders_canceled"
}

func fromDomain(r *order.CancellationRecord) CancellationDTO {
	return CancellationDTO{
		ID:           r.ID().Google(),
		OrderID:      r.OrderID().Int64(),
		ActorID:      r.Actor().ID(),
		ActorName:    r.Actor().Name(),
		ActorType:    int(r.Actor().Type()),
		Reason:       r.Reason(),
		OriginStatus: int(r.OriginStatus()),
		CanceledAt:   r.CanceledAt().UTC(),
	}
}

func toDomain(dto CancellationDTO) (*order.CancellationRecord, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	actor, err := restoreActor(dto)
	if err != nil {
		return nil, err
	}

	return order.RestoreCancellationRecord(
		id,
		kernel.OrderID(dto.OrderID),
		actor,
		dto.Reason,
		order.Status(dto.OriginStatus),
		dto.CanceledAt,
	)
}

func restoreActor(dto CancellationDTO) (kernel.Actor, error) {
	kind := kernel.ActorType(dto.ActorType)
	if kind == kernel.ActorTypeSystem {
		return kernel.SystemActor(), nil
	}
	return kernel.NewActor(dto.ActorID, dto.ActorName, kind)
}
