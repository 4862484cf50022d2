// Package orderrepo persists order aggregates. After the initial insert, rows
// are only written by conditional updates built from order transitions.
package orderrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table. The (user_id, sort_by) index
// serves the customer's order list; (status, pay_status, create_time) serves
// the overdue sweep.
type OrderDTO struct {
	ID     int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"not null;index:idx_orders_user_sort,priority:1"`

	ServeID       int64  `gorm:"not null"`
	ServeItemName string `gorm:"size:64"`
	ServeTypeName string `gorm:"size:64"`
	CityCode      string `gorm:"size:20"`

	ServeAddress  string `gorm:"size:255;not null"`
	ContactsName  string `gorm:"size:64"`
	ContactsPhone string `gorm:"size:32"`

	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PurNum         int             `gorm:"not null"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RealPayAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	ServeStartTime time.Time `gorm:"not null"`
	SortBy         int64     `gorm:"not null;index:idx_orders_user_sort,priority:2"`

	Status       int `gorm:"not null;index:idx_orders_overdue,priority:1"`
	PayStatus    int `gorm:"not null;index:idx_orders_overdue,priority:2"`
	RefundStatus int `gorm:"not null"`

	TradingOrderNo string `gorm:"size:64;index"`
	TradingChannel string `gorm:"size:32"`
	TransactionID  string `gorm:"size:64"`
	PayTime        *time.Time
	RefundID       string `gorm:"size:64"`
	RefundNo       string `gorm:"size:64"`

	CreateTime time.Time `gorm:"not null;index:idx_orders_overdue,priority:3"`
	UpdateTime time.Time `gorm:"autoUpdateTime"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// FromDomain converts an order to its row. Times are stored in UTC.
func FromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	var payTime *time.Time
	if s.PayTime != nil {
		t := s.PayTime.UTC()
		payTime = &t
	}

	return OrderDTO{
		ID:             s.ID.Int64(),
		UserID:         s.UserID,
		ServeID:        s.ServeID,
		ServeItemName:  s.ServeItemName,
		ServeTypeName:  s.ServeTypeName,
		CityCode:       s.CityCode,
		ServeAddress:   s.ServeAddress,
		ContactsName:   s.ContactsName,
		ContactsPhone:  s.ContactsPhone,
		Price:          s.Price,
		PurNum:         s.Quantity,
		TotalAmount:    s.TotalAmount,
		DiscountAmount: s.DiscountAmount,
		RealPayAmount:  s.RealPayAmount,
		ServeStartTime: s.ServeStartTime.UTC(),
		SortBy:         s.SortBy,
		Status:         int(s.Status),
		PayStatus:      int(s.PayStatus),
		RefundStatus:   int(s.RefundStatus),
		TradingOrderNo: s.TradingOrderNo,
		TradingChannel: string(s.TradingChannel),
		TransactionID:  s.TransactionID,
		PayTime:        payTime,
		RefundID:       s.RefundID,
		RefundNo:       s.RefundNo,
		CreateTime:     s.CreateTime.UTC(),
	}
}

// ToDomain rebuilds the order aggregate from its row.
func ToDomain(dto OrderDTO) (*order.Order, error) {
	return order.RestoreOrder(dto.Snapshot())
}

// Snapshot exposes the row as an order snapshot, for read models that do not
// need the aggregate.
func (dto OrderDTO) Snapshot() order.Snapshot {
	return order.Snapshot{
		ID:             kernel.OrderID(dto.ID),
		UserID:         dto.UserID,
		ServeID:        dto.ServeID,
		ServeItemName:  dto.ServeItemName,
		ServeTypeName:  dto.ServeTypeName,
		CityCode:       dto.CityCode,
		ServeAddress:   dto.ServeAddress,
		ContactsName:   dto.ContactsName,
		ContactsPhone:  dto.ContactsPhone,
		Price:          dto.Price,
		Quantity:       dto.PurNum,
		TotalAmount:    dto.TotalAmount,
		DiscountAmount: dto.DiscountAmount,
		RealPayAmount:  dto.RealPayAmount,
		ServeStartTime: dto.ServeStartTime,
		SortBy:         dto.SortBy,
		Status:         order.Status(dto.Status),
		PayStatus:      order.PayStatus(dto.PayStatus),
		RefundStatus:   order.RefundStatus(dto.RefundStatus),
		TradingOrderNo: dto.TradingOrderNo,
		TradingChannel: order.TradingChannel(dto.TradingChannel),
		TransactionID:  dto.TransactionID,
		PayTime:        dto.PayTime,
		RefundID:       dto.RefundID,
		RefundNo:       dto.RefundNo,
		CreateTime:     dto.CreateTime,
	}
}

// guardClauses turns a transition guard into WHERE fragments with their
// arguments, in a fixed order.
func guardClauses(g order.Guard) ([]string, [][]any) {
	var (
		clauses []string
		args    [][]any
	)

	switch len(g.StatusIn) {
	case 0:
	case 1:
		clauses = append(clauses, "status = ?")
		args = append(args, []any{int(g.StatusIn[0])})
	default:
		statuses := make([]int, 0, len(g.StatusIn))
		for _, s := range g.StatusIn {
			statuses = append(statuses, int(s))
		}
		clauses = append(clauses, "status IN ?")
		args = append(args, []any{statuses})
	}

	if g.PayStatus != order.PayStatusUnknown {
		clauses = append(clauses, "pay_status = ?")
		args = append(args, []any{int(g.PayStatus)})
	}

	if g.RefundStatusNot != nil {
		clauses = append(clauses, "refund_status <> ?")
		args = append(args, []any{int(*g.RefundStatusNot)})
	}

	return clauses, args
}

// changeColumns lists the columns a transition writes.
func changeColumns(c order.Changes) map[string]any {
	cols := make(map[string]any)

	if c.Status != nil {
		cols["status"] = int(*c.Status)
	}
	if c.PayStatus != nil {
		cols["pay_status"] = int(*c.PayStatus)
	}
	if c.RefundStatus != nil {
		cols["refund_status"] = int(*c.RefundStatus)
	}
	if c.Trade != nil {
		cols["trading_order_no"] = c.Trade.TradingOrderNo
		cols["trading_channel"] = string(c.Trade.Channel)
	}
	if c.Payment != nil {
		cols["trading_order_no"] = c.Payment.TradingOrderNo
		cols["trading_channel"] = string(c.Payment.Channel)
		cols["transaction_id"] = c.Payment.TransactionID
		cols["pay_time"] = c.Payment.PaidAt.UTC()
	}
	if c.RefundID != "" {
		cols["refund_id"] = c.RefundID
	}
	if c.RefundNo != "" {
		cols["refund_no"] = c.RefundNo
	}

	return cols
}
