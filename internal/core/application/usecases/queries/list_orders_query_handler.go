package queries

import (
	"context"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads a page of a customer's orders straight from
// the orders table. The (user_id, sort_by) index serves the query.
//
// Example:
//
//	handler := NewListOrdersQueryHandler(db)
//	query, _ := NewListOrdersQuery(userID, nil, 0)
//	page, err := handler.Handle(ctx, query)
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// summaryRow is the projection of the orders table the list reads.
type summaryRow struct {
	ID             int64
	ServeItemName  string
	ServeTypeName  string
	ServeAddress   string
	ServeStartTime time.Time
	PurNum         int
	RealPayAmount  decimal.Decimal
	Status         int
	PayStatus      int
	RefundStatus   int
	SortBy         int64
	CreateTime     time.Time
}

// Handle returns at most ListOrdersPageSize orders by SortBy descending.
// A short page is the last one.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString(`
		SELECT
			id,
			serve_item_name,
			serve_type_name,
			serve_address,
			serve_start_time,
			pur_num,
			real_pay_amount,
			status,
			pay_status,
			refund_status,
			sort_by,
			create_time
		FROM orders
		WHERE user_id = ?`)
	args := []any{query.userID}

	if query.status != nil {
		sql.WriteString(" AND status = ?")
		args = append(args, int(*query.status))
	}
	if query.cursor > 0 {
		sql.WriteString(" AND sort_by < ?")
		args = append(args, query.cursor)
	}
	sql.WriteString(" ORDER BY sort_by DESC LIMIT ?")
	args = append(args, ListOrdersPageSize)

	var rows []summaryRow
	if err := h.db.WithContext(ctx).Raw(sql.String(), args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	page := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		page = append(page, OrderSummary{
			ID:             kernel.OrderID(row.ID),
			ServeItemName:  row.ServeItemName,
			ServeTypeName:  row.ServeTypeName,
			ServeAddress:   row.ServeAddress,
			ServeStartTime: row.ServeStartTime.UTC(),
			Quantity:       row.PurNum,
			RealPayAmount:  row.RealPayAmount,
			Status:         order.Status(row.Status),
			PayStatus:      order.PayStatus(row.PayStatus),
			RefundStatus:   order.RefundStatus(row.RefundStatus),
			SortBy:         row.SortBy,
			CreateTime:     row.CreateTime.UTC(),
		})
	}
	return page, nil
}
