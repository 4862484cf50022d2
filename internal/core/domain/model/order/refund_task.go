package order

import (
	"errors"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrRefundTaskIsNotConstructed = errors.New("RefundTask must be created via NewRefundTask")

// RefundTask is a durable queue entry. While it exists, the refund of its
// order is pending; it is deleted in the same transaction that records a
// final gateway answer on the order.
type RefundTask struct {
	orderID        kernel.OrderID
	tradingOrderNo string
	channel        TradingChannel
	amount         decimal.Decimal
	createdAt      time.Time
	isConstructed  bool
}

// NewRefundTask queues the refund of a paid order's real pay amount.
func NewRefundTask(o *Order, at time.Time) (*RefundTask, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	t := &RefundTask{
		orderID:       o.id,
		channel:       o.tradingChannel,
		amount:        o.realPayAmount,
		createdAt:     at,
		isConstructed: true,
	}

	if err := errors.Join(t.setTradingOrderNo(o.tradingOrderNo), o.tradingChannel.Validate(), t.validateAmount()); err != nil {
		return nil, err
	}
	return t, nil
}

// RestoreRefundTask rebuilds a task read from storage.
func RestoreRefundTask(
	orderID kernel.OrderID,
	tradingOrderNo string,
	channel TradingChannel,
	amount decimal.Decimal,
	createdAt time.Time,
) (*RefundTask, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return &RefundTask{
		orderID:        orderID,
		tradingOrderNo: tradingOrderNo,
		channel:        channel,
		amount:         amount,
		createdAt:      createdAt,
		isConstructed:  true,
	}, nil
}

func (t *RefundTask) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrRefundTaskIsNotConstructed
	}
	return nil
}

func (t *RefundTask) OrderID() kernel.OrderID {
	return t.orderID
}

func (t *RefundTask) TradingOrderNo() string {
	return t.tradingOrderNo
}

func (t *RefundTask) Channel() TradingChannel {
	return t.channel
}

func (t *RefundTask) Amount() decimal.Decimal {
	return t.amount
}

func (t *RefundTask) CreatedAt() time.Time {
	return t.createdAt
}

func (t *RefundTask) setTradingOrderNo(no string) error {
	if strings.TrimSpace(no) == "" {
		return errs.NewValueIsRequiredError("trading order no")
	}
	t.tradingOrderNo = no
	return nil
}

func (t *RefundTask) validateAmount() error {
	if !t.amount.IsPositive() {
		return errs.NewValueIsInvalidError("refund amount must be positive")
	}
	return nil
}

// RefundState is the refund gateway's answer for one refund request.
type RefundState string

const (
	RefundStateProcessing RefundState = "PROCESSING"
	RefundStateSuccess    RefundState = "SUCCESS"
	RefundStateFailed     RefundState = "FAIL"
)

// RefundResult is what the refund gateway returned for a task.
type RefundResult struct {
	State    RefundState
	RefundID string
	RefundNo string
}

// Status maps the gateway state onto the order's refund status. Anything other
// than a definite success or failure keeps the refund pending.
func (r RefundResult) Status() RefundStatus {
	switch r.State {
	case RefundStateSuccess:
		return RefundStatusSuccess
	case RefundStateFailed:
		return RefundStatusFailed
	default:
		return RefundStatusPending
	}
}

// Settlement returns the transition recording a final answer. ok is false
// while the refund is still pending; the task must then stay queued.
func (r RefundResult) Settlement() (Transition, bool) {
	status := r.Status()
	if !status.IsTerminal() {
		return Transition{}, false
	}
	return NewSettleRefundTransition(status, r.RefundID, r.RefundNo), true
}
