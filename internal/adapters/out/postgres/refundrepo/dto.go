// Package refundrepo is the durable refund queue: one row per closed, paid
// order whose money has not been confirmed as returned.
package refundrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type RefundTaskDTO struct {
	OrderID        int64           `gorm:"primaryKey;autoIncrement:false"`
	TradingOrderNo string          `gorm:"size:64;not null"`
	TradingChannel string          `gorm:"size:32;not null"`
	RealPayAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreateTime     time.Time       `gorm:"not null;index"`
}

func (RefundTaskDTO) TableName() string {
	return "orders_refund"
}

func fromDomain(t *order.RefundTask) RefundTaskDTO {
	return RefundTaskDTO{
		OrderID:        t.OrderID().Int64(),
		TradingOrderNo: t.TradingOrderNo(),
		TradingChannel: string(t.Channel()),
		RealPayAmount:  t.Amount(),
		CreateTime:     t.CreatedAt().UTC(),
	}
}

func toDomain(dto RefundTaskDTO) (*order.RefundTask, error) {
	return order.RestoreRefundTask(
		kernel.OrderID(dto.OrderID),
		dto.TradingOrderNo,
		order.TradingChannel(dto.TradingChannel),
		dto.RealPayAmount,
		dto.CreateTime,
	)
}
