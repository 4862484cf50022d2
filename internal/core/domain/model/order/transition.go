package order

import (
	"slices"
	"time"
)

// Transition names used for logging and metrics.
const (
	TransitionAttachTrade    = "attach_trade"
	TransitionConfirmPay     = "confirm_payment"
	TransitionCancelUnpaid   = "cancel_unpaid"
	TransitionCloseForRefund = "close_for_refund"
	TransitionSettleRefund   = "settle_refund"
)

// Guard is the persisted state a transition is conditional on. Zero-valued
// fields do not constrain the write.
type Guard struct {
	StatusIn        []Status
	PayStatus       PayStatus
	RefundStatusNot *RefundStatus
}

// Payment is what a successful charge leaves on an order.
type Payment struct {
	TradingOrderNo string
	Channel        TradingChannel
	TransactionID  string
	PaidAt         time.Time
}

// Trade links an order to a charge that has been requested but not confirmed.
type Trade struct {
	TradingOrderNo string
	Channel        TradingChannel
}

// Changes are the columns a transition writes. Nil or empty fields are left
// untouched.
type Changes struct {
	Status       *Status
	PayStatus    *PayStatus
	RefundStatus *RefundStatus
	Payment      *Payment
	Trade        *Trade
	RefundID     string
	RefundNo     string
}

// Transition is a single-row compare-and-set: when the stored order matches
// Guard, Changes are written; otherwise nothing happens. Exactly one of two
// concurrent attempts at the same transition can succeed.
type Transition struct {
	Name    string
	Guard   Guard
	Changes Changes
}

// Matches evaluates the guard against an in-memory order. Stores use it when
// they cannot push the predicate down to the database.
func (g Guard) Matches(o *Order) bool {
	if len(g.StatusIn) > 0 && !slices.Contains(g.StatusIn, o.status) {
		return false
	}
	if g.PayStatus != PayStatusUnknown && g.PayStatus != o.payStatus {
		return false
	}
	if g.RefundStatusNot != nil && *g.RefundStatusNot == o.refundStatus {
		return false
	}
	return true
}

// NewAttachTradeTransition stores the reference of a freshly requested charge.
// It only applies while the order is unpaid.
func NewAttachTradeTransition(trade Trade) Transition {
	return Transition{
		Name: TransitionAttachTrade,
		Guard: Guard{
			StatusIn:  []Status{StatusNoPay},
			PayStatus: PayStatusNoPay,
		},
		Changes: Changes{Trade: &trade},
	}
}

// NewConfirmPaymentTransition marks an unpaid order as paid and ready for
// dispatch. A DISPATCHING order with NO_PAY is accepted as well, so that the
// payment record is completed when the two fields have drifted apart.
func NewConfirmPaymentTransition(payment Payment) Transition {
	status := StatusDispatching
	paid := PayStatusPaid

	return Transition{
		Name: TransitionConfirmPay,
		Guard: Guard{
			StatusIn:  []Status{StatusNoPay, StatusDispatching},
			PayStatus: PayStatusNoPay,
		},
		Changes: Changes{
			Status:    &status,
			PayStatus: &paid,
			Payment:   &payment,
		},
	}
}

// NewCancelUnpaidTransition cancels an order nobody has paid for.
func NewCancelUnpaidTransition() Transition {
	canceled := StatusCanceled

	return Transition{
		Name:    TransitionCancelUnpaid,
		Guard:   Guard{StatusIn: []Status{StatusNoPay}},
		Changes: Changes{Status: &canceled},
	}
}

// NewCloseForRefundTransition closes a paid order that has not been dispatched
// yet and marks its refund as pending. refund is RefundStatusSuccess when there
// is nothing to give back.
func NewCloseForRefundTransition(refund RefundStatus) Transition {
	closed := StatusClosed

	return Transition{
		Name:  TransitionCloseForRefund,
		Guard: Guard{StatusIn: []Status{StatusDispatching}},
		Changes: Changes{
			Status:       &closed,
			RefundStatus: &refund,
		},
	}
}

// NewSettleRefundTransition records the gateway's final refund answer. It is
// skipped when the order already carries that answer.
func NewSettleRefundTransition(status RefundStatus, refundID, refundNo string) Transition {
	return Transition{
		Name:  TransitionSettleRefund,
		Guard: Guard{RefundStatusNot: &status},
		Changes: Changes{
			RefundStatus: &status,
			RefundID:     refundID,
			RefundNo:     refundNo,
		},
	}
}
