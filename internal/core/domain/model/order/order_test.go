package order_test

import (
	"testing"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2025, time.October, 18, 10, 0, 0, 0, time.UTC)
	testStart = time.Date(2025, time.October, 20, 9, 0, 0, 0, time.UTC)
)

func validPlacement() order.Placement {
	return order.Placement{
		UserID:         1001,
		ServeID:        7,
		ServeItemName:  "Deep cleaning",
		ServeTypeName:  "Cleaning",
		CityCode:       "010",
		ServeAddress:   "Beijing Haidian 1 Zhongguancun St",
		ContactsName:   "Li",
		ContactsPhone:  "13800000000",
		ServeStartTime: testStart,
		Price:          decimal.RequireFromString("50.00"),
		Quantity:       2,
	}
}

func mustOrderID(t *testing.T, seq int64) kernel.OrderID {
	t.Helper()
	id, err := kernel.NewOrderID(testNow, seq)
	require.NoError(t, err)
	return id
}

func TestNewOrder(t *testing.T) {
	t.Run("should open an unpaid order with computed amounts", func(t *testing.T) {
		id := mustOrderID(t, 123456)

		o, err := order.NewOrder(id, validPlacement(), testNow)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.Equal(t, id, o.ID())
		assert.Equal(t, order.StatusNoPay, o.Status())
		assert.Equal(t, order.PayStatusNoPay, o.PayStatus())
		assert.Equal(t, order.RefundStatusNone, o.RefundStatus())
		assert.True(t, o.TotalAmount().Equal(decimal.RequireFromString("100.00")))
		assert.True(t, o.DiscountAmount().IsZero())
		assert.True(t, o.RealPayAmount().Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, testStart.UnixMilli()+23456, o.SortBy())
		assert.Equal(t, testNow, o.CreateTime())
	})

	t.Run("should subtract the coupon discount", func(t *testing.T) {
		p := validPlacement()
		p.Discount = decimal.RequireFromString("15.50")

		o, err := order.NewOrder(mustOrderID(t, 1), p, testNow)

		require.NoError(t, err)
		assert.True(t, o.RealPayAmount().Equal(decimal.RequireFromString("84.50")))
	})

	t.Run("should reject a discount larger than the total", func(t *testing.T) {
		p := validPlacement()
		p.Discount = decimal.RequireFromString("100.01")

		_, err := order.NewOrder(mustOrderID(t, 1), p, testNow)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "exceeds total")
	})

	t.Run("should reject quantity out of range", func(t *testing.T) {
		p := validPlacement()
		p.Quantity = 0

		_, err := order.NewOrder(mustOrderID(t, 1), p, testNow)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should join every validation failure", func(t *testing.T) {
		p := validPlacement()
		p.UserID = 0
		p.ServeAddress = " "
		p.Price = decimal.RequireFromString("-1")

		_, err := order.NewOrder(0, p, testNow)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "order id")
		assert.Contains(t, err.Error(), "user id")
		assert.Contains(t, err.Error(), "serve address")
		assert.Contains(t, err.Error(), "price")
	})
}

func TestRestoreOrder(t *testing.T) {
	o, err := order.NewOrder(mustOrderID(t, 9), validPlacement(), testNow)
	require.NoError(t, err)

	restored, err := order.RestoreOrder(o.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, o.Snapshot(), restored.Snapshot())

	snap := o.Snapshot()
	snap.PayStatus = 3
	_, err = order.RestoreOrder(snap)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestOrder_ZeroValue(t *testing.T) {
	var o order.Order

	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_IsPaymentOverdue(t *testing.T) {
	o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
	require.NoError(t, err)

	assert.False(t, o.IsPaymentOverdue(testNow.Add(14*time.Minute)))
	assert.True(t, o.IsPaymentOverdue(testNow.Add(16*time.Minute)))
}

func TestOrder_PaymentConfirmation(t *testing.T) {
	payment := order.Payment{
		TradingOrderNo: "T1",
		Channel:        order.ChannelAliPay,
		TransactionID:  "2025101822001",
		PaidAt:         testNow.Add(time.Minute),
	}

	t.Run("unpaid order yields the confirm transition", func(t *testing.T) {
		o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
		require.NoError(t, err)

		tr, ok, err := o.PaymentConfirmation(payment)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, order.TransitionConfirmPay, tr.Name)

		o.Apply(tr)
		assert.Equal(t, order.StatusDispatching, o.Status())
		assert.Equal(t, order.PayStatusPaid, o.PayStatus())
		assert.Equal(t, "T1", o.TradingOrderNo())
		assert.Equal(t, "2025101822001", o.TransactionID())
		require.NotNil(t, o.PayTime())
	})

	t.Run("paid order is already reconciled", func(t *testing.T) {
		o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
		require.NoError(t, err)
		tr, _, err := o.PaymentConfirmation(payment)
		require.NoError(t, err)
		o.Apply(tr)

		_, ok, err := o.PaymentConfirmation(order.Payment{})

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing transaction id is invalid input", func(t *testing.T) {
		o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
		require.NoError(t, err)

		p := payment
		p.TransactionID = ""
		_, _, err = o.PaymentConfirmation(p)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("canceled order rejects the payment", func(t *testing.T) {
		o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
		require.NoError(t, err)
		o.Apply(order.NewCancelUnpaidTransition())

		_, _, err = o.PaymentConfirmation(payment)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("dispatching but unpaid is tolerated", func(t *testing.T) {
		snap := validSnapshot(t)
		snap.Status = order.StatusDispatching
		o, err := order.RestoreOrder(snap)
		require.NoError(t, err)
		require.True(t, o.IsInconsistentlyDispatched())

		_, ok, err := o.PaymentConfirmation(payment)

		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func validSnapshot(t *testing.T) order.Snapshot {
	t.Helper()
	o, err := order.NewOrder(mustOrderID(t, 1), validPlacement(), testNow)
	require.NoError(t, err)
	return o.Snapshot()
}
