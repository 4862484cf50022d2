package queries

import (
	"context"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentPoller asks the payment gateway for the outcome of a charge.
type PaymentPoller interface {
	Handle(ctx context.Context, cmd commands.QueryPaymentStatusCommand) (commands.PaymentStatus, error)
}

// GetOrderDetailQueryHandler reads an order and lazily expires it.
//
// An order still unpaid past its payment deadline is first checked against
// the gateway, so a payment the event channel has not delivered yet is picked
// up; if the gateway has no payment either, the order is canceled by the
// system before it is returned. The scheduled sweep does the same for orders
// nobody looks at.
type GetOrderDetailQueryHandler struct {
	db       *gorm.DB
	poller   PaymentPoller
	canceler commands.OrderCanceler
	clock    ports.Clock
	logger   *zap.Logger
}

func NewGetOrderDetailQueryHandler(
	db *gorm.DB,
	poller PaymentPoller,
	canceler commands.OrderCanceler,
	clock ports.Clock,
	logger *zap.Logger,
) GetOrderDetailQueryHandler {
	return GetOrderDetailQueryHandler{
		db:       db,
		poller:   poller,
		canceler: canceler,
		clock:    clock,
		logger:   logger.With(zap.String("component", "order-detail")),
	}
}

type detailRow struct {
	ID             int64
	UserID         int64
	ServeID        int64
	ServeItemName  string
	ServeTypeName  string
	CityCode       string
	ServeAddress   string
	ContactsName   string
	ContactsPhone  string
	ServeStartTime time.Time
	Price          decimal.Decimal
	PurNum         int
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	RealPayAmount  decimal.Decimal
	Status         int
	PayStatus      int
	RefundStatus   int
	TradingOrderNo string
	TradingChannel string
	TransactionID  string
	PayTime        *time.Time
	RefundNo       string
	CreateTime     time.Time
}

type cancellationRow struct {
	Reason     string
	ActorName  string
	ActorType  int
	CanceledAt time.Time
}

// Handle returns the order. Orders of other customers are reported as not
// found. Failures of the lazy expiry are logged and the current state is
// returned; the sweep will retry.
func (h GetOrderDetailQueryHandler) Handle(ctx context.Context, query GetOrderDetailQuery) (OrderDetail, error) {
	if err := query.Validate(); err != nil {
		return OrderDetail{}, err
	}

	row, err := h.load(ctx, query.orderID, query.userID)
	if err != nil {
		return OrderDetail{}, err
	}

	if h.isOverdue(row) && h.expire(ctx, query.orderID) {
		if row, err = h.load(ctx, query.orderID, query.userID); err != nil {
			return OrderDetail{}, err
		}
	}

	detail := detailOf(row)
	if detail.Status.IsCancellationResult() {
		if detail.Cancellation, err = h.loadCancellation(ctx, query.orderID); err != nil {
			return OrderDetail{}, err
		}
	}
	return detail, nil
}

func (h GetOrderDetailQueryHandler) isOverdue(row detailRow) bool {
	return order.Status(row.Status) == order.StatusNoPay &&
		order.PayStatus(row.PayStatus) == order.PayStatusNoPay &&
		row.CreateTime.Add(order.PaymentDeadline).Before(h.clock.Now())
}

// expire reports whether the order may have changed and must be re-read.
func (h GetOrderDetailQueryHandler) expire(ctx context.Context, id kernel.OrderID) bool {
	log := h.logger.With(zap.String("order_id", id.String()))

	poll, err := commands.NewQueryPaymentStatusCommand(id)
	if err != nil {
		log.Error("Failed to build payment poll", zap.Error(err))
		return false
	}
	status, err := h.poller.Handle(ctx, poll)
	if err != nil {
		log.Warn("Payment poll failed, leaving overdue order as is", zap.Error(err))
		return false
	}
	if status.PayStatus == order.PayStatusPaid {
		log.Info("Overdue order turned out to be paid")
		return true
	}

	cancel, err := commands.NewCancelOrderCommand(id, kernel.SystemActor(), order.OverdueCancellationReason)
	if err != nil {
		log.Error("Failed to build overdue cancellation", zap.Error(err))
		return false
	}
	if err = h.canceler.Handle(ctx, cancel); err != nil {
		log.Warn("Failed to cancel overdue order", zap.Error(err))
		return false
	}
	return true
}

func (h GetOrderDetailQueryHandler) load(ctx context.Context, id kernel.OrderID, userID int64) (detailRow, error) {
	var row detailRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			id, user_id, serve_id, serve_item_name, serve_type_name, city_code,
			serve_address, contacts_name, contacts_phone, serve_start_time,
			price, pur_num, total_amount, discount_amount, real_pay_amount,
			status, pay_status, refund_status,
			trading_order_no, trading_channel, transaction_id, pay_time,
			refund_no, create_time
		FROM orders
		WHERE id = ?
	`, id.Int64()).Scan(&row)
	if result.Error != nil {
		return detailRow{}, result.Error
	}
	if result.RowsAffected == 0 || row.UserID != userID {
		return detailRow{}, errs.NewObjectNotFoundError("order", id.String())
	}
	return row, nil
}

func (h GetOrderDetailQueryHandler) loadCancellation(ctx context.Context, id kernel.OrderID) (*CancellationDetail, error) {
	var row cancellationRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT reason, actor_name, actor_type, canceled_at
		FROM orders_canceled
		WHERE order_id = ?
		ORDER BY canceled_at
		LIMIT 1
	`, id.Int64()).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &CancellationDetail{
		Reason:     row.Reason,
		ActorName:  row.ActorName,
		ActorType:  kernel.ActorType(row.ActorType),
		CanceledAt: row.CanceledAt.UTC(),
	}, nil
}

func detailOf(row detailRow) OrderDetail {
	var payTime *time.Time
	if row.PayTime != nil {
		t := row.PayTime.UTC()
		payTime = &t
	}

	return OrderDetail{
		ID:              kernel.OrderID(row.ID),
		UserID:          row.UserID,
		ServeID:         row.ServeID,
		ServeItemName:   row.ServeItemName,
		ServeTypeName:   row.ServeTypeName,
		CityCode:        row.CityCode,
		ServeAddress:    row.ServeAddress,
		ContactsName:    row.ContactsName,
		ContactsPhone:   row.ContactsPhone,
		ServeStartTime:  row.ServeStartTime.UTC(),
		Price:           row.Price,
		Quantity:        row.PurNum,
		TotalAmount:     row.TotalAmount,
		DiscountAmount:  row.DiscountAmount,
		RealPayAmount:   row.RealPayAmount,
		Status:          order.Status(row.Status),
		PayStatus:       order.PayStatus(row.PayStatus),
		RefundStatus:    order.RefundStatus(row.RefundStatus),
		TradingOrderNo:  row.TradingOrderNo,
		TradingChannel:  order.TradingChannel(row.TradingChannel),
		TransactionID:   row.TransactionID,
		PayTime:         payTime,
		RefundNo:        row.RefundNo,
		CreateTime:      row.CreateTime.UTC(),
		PaymentDeadline: row.CreateTime.UTC().Add(order.PaymentDeadline),
	}
}
