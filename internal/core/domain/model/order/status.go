package order

import (
	"fmt"

	"orders/internal/pkg/errs"
)

// Status is the lifecycle state of an order. The numeric values are the
// persisted codes.
//
// State transitions handled by this service:
//
//	NO_PAY ──pay──> DISPATCHING ──(dispatch)──> IN_SERVICE ──> AWAITING_REVIEW ──> COMPLETED
//	  │                  │
//	cancel             cancel
//	  ▼                  ▼
//	CANCELED           CLOSED (refund pending)
//
// Moves from DISPATCHING onwards into service are owned by other services and
// only read here.
type Status int

const (
	StatusNoPay          Status = 0
	StatusDispatching    Status = 100
	StatusInService      Status = 300
	StatusAwaitingReview Status = 400
	StatusCompleted      Status = 500
	StatusCanceled       Status = 600
	StatusClosed         Status = 700
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusNoPay:          "NO_PAY",
		StatusDispatching:    "DISPATCHING",
		StatusInService:      "IN_SERVICE",
		StatusAwaitingReview: "AWAITING_REVIEW",
		StatusCompleted:      "COMPLETED",
		StatusCanceled:       "CANCELED",
		StatusClosed:         "CLOSED",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that s is one of the persisted codes.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("order status", fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// IsCancellationResult reports whether s is where a cancellation leaves an order.
func (s Status) IsCancellationResult() bool {
	return s == StatusCanceled || s == StatusClosed
}

// ParseStatus maps a status name back to its code.
func ParseStatus(name string) (Status, error) {
	for s, str := range getStatusStrings() {
		if str == name {
			return s, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("order status", fmt.Errorf("%q is not a valid order status", name))
}

// PayStatus tracks whether the customer's payment has been confirmed.
type PayStatus int

const (
	PayStatusUnknown PayStatus = 0
	PayStatusNoPay   PayStatus = 2
	PayStatusPaid    PayStatus = 4
)

func (s PayStatus) String() string {
	switch s {
	case PayStatusNoPay:
		return "NO_PAY"
	case PayStatusPaid:
		return "PAID"
	default:
		return "UNKNOWN"
	}
}

func (s PayStatus) Validate() error {
	if s != PayStatusNoPay && s != PayStatusPaid {
		return errs.NewValueIsInvalidErrorWithCause("pay status", fmt.Errorf("%d is not a valid pay status", s))
	}
	return nil
}

// RefundStatus tracks the refund of a paid order that was closed.
type RefundStatus int

const (
	RefundStatusNone    RefundStatus = 0
	RefundStatusPending RefundStatus = 1
	RefundStatusSuccess RefundStatus = 2
	RefundStatusFailed  RefundStatus = 3
)

func (s RefundStatus) String() string {
	switch s {
	case RefundStatusNone:
		return "NONE"
	case RefundStatusPending:
		return "REFUNDING"
	case RefundStatusSuccess:
		return "REFUND_SUCCESS"
	case RefundStatusFailed:
		return "REFUND_FAILED"
	default:
		return "UNKNOWN"
	}
}

func (s RefundStatus) Validate() error {
	if s < RefundStatusNone || s > RefundStatusFailed {
		return errs.NewValueIsInvalidErrorWithCause("refund status", fmt.Errorf("%d is not a valid refund status", s))
	}
	return nil
}

// IsTerminal reports whether the refund gateway has given a final answer.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusSuccess || s == RefundStatusFailed
}

// TradingChannel names the payment provider a charge was made through.
type TradingChannel string

const (
	ChannelAliPay    TradingChannel = "ALI_PAY"
	ChannelWechatPay TradingChannel = "WECHAT_PAY"
)

func (c TradingChannel) Validate() error {
	if c != ChannelAliPay && c != ChannelWechatPay {
		return errs.NewValueIsInvalidErrorWithCause("trading channel", fmt.Errorf("%q is not a supported channel", string(c)))
	}
	return nil
}

func (c TradingChannel) String() string {
	return string(c)
}
