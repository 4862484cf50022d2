package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	// MaxQuantity bounds the number of service units bought in one order.
	MaxQuantity = 999

	// PaymentDeadline is how long an order may stay unpaid before it is
	// canceled by the system.
	PaymentDeadline = 15 * time.Minute
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order is the aggregate root of the purchase lifecycle. Its state is only
// ever changed in storage through a Transition; the in-memory copy is a
// snapshot taken when it was loaded.
//
// Order follows these invariants:
//   - TotalAmount = Price * Quantity
//   - RealPayAmount = TotalAmount - DiscountAmount, and none of them is negative
//   - SortBy = ServeStartTime in epoch ms + the last five digits of the id
//   - Pay status and order status only move forward, except into CANCELED or CLOSED
type Order struct {
	id     kernel.OrderID
	userID int64

	serveID       int64
	serveItemName string
	serveTypeName string
	cityCode      string

	serveAddress  string
	contactsName  string
	contactsPhone string

	price          decimal.Decimal
	quantity       int
	totalAmount    decimal.Decimal
	discountAmount decimal.Decimal
	realPayAmount  decimal.Decimal

	serveStartTime time.Time
	sortBy         int64

	status       Status
	payStatus    PayStatus
	refundStatus RefundStatus

	tradingOrderNo string
	tradingChannel TradingChannel
	transactionID  string
	payTime        *time.Time

	refundID string
	refundNo string

	createTime time.Time

	isConstructed bool
}

// Placement carries everything needed to open an order. Service and address
// fields come from the catalog and address book; Discount comes from a coupon
// and defaults to zero.
type Placement struct {
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
	Quantity       int
	Discount       decimal.Decimal
}

// NewOrder opens an unpaid order.
//
// Parameters:
//   - id: a freshly minted order id
//   - p: service, address and price data
//   - now: the creation time
//
// Returns:
//   - *Order: the new order in NO_PAY / NO_PAY / NONE
//   - error: every validation failure, joined
//
// Example:
//
//	o, err := order.NewOrder(id, order.Placement{
//	    UserID: 1001, ServeID: 7, ServeStartTime: start,
//	    Price: decimal.RequireFromString("50.00"), Quantity: 2,
//	}, time.Now())
//	// o.TotalAmount() == 100.00, o.RealPayAmount() == 100.00
func NewOrder(id kernel.OrderID, p Placement, now time.Time) (*Order, error) {
	o := &Order{
		status:        StatusNoPay,
		payStatus:     PayStatusNoPay,
		refundStatus:  RefundStatusNone,
		createTime:    now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setUser(p.UserID),
		o.setServe(p),
		o.setContact(p),
		o.setAmounts(p.Price, p.Quantity, p.Discount),
	); err != nil {
		return nil, err
	}

	o.serveStartTime = p.ServeStartTime
	o.sortBy = id.SortKey(p.ServeStartTime)

	return o, nil
}

// Snapshot is the full state of an order as read from storage.
type Snapshot struct {
	ID             kernel.OrderID
	UserID         int64
	ServeID        int64
	ServeItemName  string
	ServeTypeName  string
	CityCode       string
	ServeAddress   string
	ContactsName   string
	ContactsPhone  string
	Price          decimal.Decimal
	Quantity       int
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	RealPayAmount  decimal.Decimal
	ServeStartTime time.Time
	SortBy         int64
	Status         Status
	PayStatus      PayStatus
	RefundStatus   RefundStatus
	TradingOrderNo string
	TradingChannel TradingChannel
	TransactionID  string
	PayTime        *time.Time
	RefundID       string
	RefundNo       string
	CreateTime     time.Time
}

// RestoreOrder rebuilds an order from storage. Only structural checks run:
// historical rows are trusted for amounts.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.Status.Validate(),
		s.PayStatus.Validate(),
		s.RefundStatus.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:             s.ID,
		userID:         s.UserID,
		serveID:        s.ServeID,
		serveItemName:  s.ServeItemName,
		serveTypeName:  s.ServeTypeName,
		cityCode:       s.CityCode,
		serveAddress:   s.ServeAddress,
		contactsName:   s.ContactsName,
		contactsPhone:  s.ContactsPhone,
		price:          s.Price,
		quantity:       s.Quantity,
		totalAmount:    s.TotalAmount,
		discountAmount: s.DiscountAmount,
		realPayAmount:  s.RealPayAmount,
		serveStartTime: s.ServeStartTime,
		sortBy:         s.SortBy,
		status:         s.Status,
		payStatus:      s.PayStatus,
		refundStatus:   s.RefundStatus,
		tradingOrderNo: s.TradingOrderNo,
		tradingChannel: s.TradingChannel,
		transactionID:  s.TransactionID,
		payTime:        s.PayTime,
		refundID:       s.RefundID,
		refundNo:       s.RefundNo,
		createTime:     s.CreateTime,
		isConstructed:  true,
	}, nil
}

// Snapshot exports the order's state for persistence and read models.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:             o.id,
		UserID:         o.userID,
		ServeID:        o.serveID,
		ServeItemName:  o.serveItemName,
		ServeTypeName:  o.serveTypeName,
		CityCode:       o.cityCode,
		ServeAddress:   o.serveAddress,
		ContactsName:   o.contactsName,
		ContactsPhone:  o.contactsPhone,
		Price:          o.price,
		Quantity:       o.quantity,
		TotalAmount:    o.totalAmount,
		DiscountAmount: o.discountAmount,
		RealPayAmount:  o.realPayAmount,
		ServeStartTime: o.serveStartTime,
		SortBy:         o.sortBy,
		Status:         o.status,
		PayStatus:      o.payStatus,
		RefundStatus:   o.refundStatus,
		TradingOrderNo: o.tradingOrderNo,
		TradingChannel: o.tradingChannel,
		TransactionID:  o.transactionID,
		PayTime:        o.payTime,
		RefundID:       o.refundID,
		RefundNo:       o.refundNo,
		CreateTime:     o.createTime,
	}
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.OrderID {
	return o.id
}

func (o *Order) UserID() int64 {
	return o.userID
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PayStatus() PayStatus {
	return o.payStatus
}

func (o *Order) RefundStatus() RefundStatus {
	return o.refundStatus
}

func (o *Order) TotalAmount() decimal.Decimal {
	return o.totalAmount
}

func (o *Order) DiscountAmount() decimal.Decimal {
	return o.discountAmount
}

func (o *Order) RealPayAmount() decimal.Decimal {
	return o.realPayAmount
}

func (o *Order) SortBy() int64 {
	return o.sortBy
}

func (o *Order) CreateTime() time.Time {
	return o.createTime
}

func (o *Order) ServeItemName() string {
	return o.serveItemName
}

// TradingOrderNo returns the reference of the last charge requested for the
// order, or "" when none was requested.
func (o *Order) TradingOrderNo() string {
	return o.tradingOrderNo
}

func (o *Order) TradingChannel() TradingChannel {
	return o.tradingChannel
}

func (o *Order) TransactionID() string {
	return o.transactionID
}

func (o *Order) PayTime() *time.Time {
	return o.payTime
}

func (o *Order) IsPaid() bool {
	return o.payStatus == PayStatusPaid
}

// IsPaymentOverdue reports whether the order is still unpaid after the
// payment deadline.
func (o *Order) IsPaymentOverdue(now time.Time) bool {
	return o.status == StatusNoPay &&
		o.payStatus == PayStatusNoPay &&
		o.createTime.Add(PaymentDeadline).Before(now)
}

// PaymentConfirmation validates an incoming payment result against the order
// and returns the transition that records it.
//
// Returns:
//   - ok=false, nil: the order is already paid, nothing to do
//   - ValueIsRequiredError: the transaction id is missing
//   - InvalidTransitionError: the order was canceled or has moved past payment
func (o *Order) PaymentConfirmation(p Payment) (Transition, bool, error) {
	if o.payStatus != PayStatusNoPay {
		return Transition{}, false, nil
	}

	if strings.TrimSpace(p.TransactionID) == "" {
		return Transition{}, false, errs.NewValueIsRequiredError("transaction id")
	}
	if strings.TrimSpace(p.TradingOrderNo) == "" {
		return Transition{}, false, errs.NewValueIsRequiredError("trading order no")
	}
	if err := p.Channel.Validate(); err != nil {
		return Transition{}, false, err
	}

	t := NewConfirmPaymentTransition(p)
	if !t.Guard.Matches(o) {
		return Transition{}, false, errs.NewInvalidTransitionError("order", o.id, "confirm payment of", o.status.String())
	}
	return t, true, nil
}

// IsInconsistentlyDispatched reports the DISPATCHING-but-unpaid combination,
// which should not occur but is tolerated by payment confirmation.
func (o *Order) IsInconsistentlyDispatched() bool {
	return o.status == StatusDispatching && o.payStatus == PayStatusNoPay
}

// Apply copies a transition's changes onto the in-memory order. Callers use
// it after the store reported the transition as applied.
func (o *Order) Apply(t Transition) {
	c := t.Changes
	if c.Status != nil {
		o.status = *c.Status
	}
	if c.PayStatus != nil {
		o.payStatus = *c.PayStatus
	}
	if c.RefundStatus != nil {
		o.refundStatus = *c.RefundStatus
	}
	if c.Trade != nil {
		o.tradingOrderNo = c.Trade.TradingOrderNo
		o.tradingChannel = c.Trade.Channel
	}
	if c.Payment != nil {
		paidAt := c.Payment.PaidAt
		o.tradingOrderNo = c.Payment.TradingOrderNo
		o.tradingChannel = c.Payment.Channel
		o.transactionID = c.Payment.TransactionID
		o.payTime = &paidAt
	}
	if c.RefundID != "" {
		o.refundID = c.RefundID
	}
	if c.RefundNo != "" {
		o.refundNo = c.RefundNo
	}
}

func (o *Order) setID(id kernel.OrderID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setUser(userID int64) error {
	if userID <= 0 {
		return errs.NewValueIsRequiredError("user id")
	}
	o.userID = userID
	return nil
}

func (o *Order) setServe(p Placement) error {
	if p.ServeID <= 0 {
		return errs.NewValueIsRequiredError("serve id")
	}
	if p.ServeStartTime.IsZero() {
		return errs.NewValueIsRequiredError("serve start time")
	}
	o.serveID = p.ServeID
	o.serveItemName = p.ServeItemName
	o.serveTypeName = p.ServeTypeName
	o.cityCode = p.CityCode
	return nil
}

func (o *Order) setContact(p Placement) error {
	if strings.TrimSpace(p.ServeAddress) == "" {
		return errs.NewValueIsRequiredError("serve address")
	}
	o.serveAddress = p.ServeAddress
	o.contactsName = p.ContactsName
	o.contactsPhone = p.ContactsPhone
	return nil
}

func (o *Order) setAmounts(price decimal.Decimal, quantity int, discount decimal.Decimal) error {
	if err := errors.Join(
		kernel.ValidateAmount("price", price),
		kernel.ValidateAmount("discount", discount),
	); err != nil {
		return err
	}
	if quantity < 1 || quantity > MaxQuantity {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, MaxQuantity)
	}

	total := price.Mul(decimal.NewFromInt(int64(quantity)))
	if discount.GreaterThan(total) {
		return errs.NewValueIsInvalidErrorWithCause("discount",
			fmt.Errorf("%s exceeds total %s", kernel.FormatAmount(discount), kernel.FormatAmount(total)))
	}

	o.price = price
	o.quantity = quantity
	o.totalAmount = total
	o.discountAmount = discount
	o.realPayAmount = total.Sub(discount)
	return nil
}
