package order_test

import (
	"testing"

	"orders/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_Matches(t *testing.T) {
	unpaid, err := order.RestoreOrder(validSnapshot(t))
	require.NoError(t, err)

	t.Run("attach trade only while unpaid", func(t *testing.T) {
		tr := order.NewAttachTradeTransition(order.Trade{TradingOrderNo: "T1", Channel: order.ChannelWechatPay})

		assert.True(t, tr.Guard.Matches(unpaid))

		snap := validSnapshot(t)
		snap.PayStatus = order.PayStatusPaid
		snap.Status = order.StatusDispatching
		paid, err := order.RestoreOrder(snap)
		require.NoError(t, err)
		assert.False(t, tr.Guard.Matches(paid))
	})

	t.Run("cancel unpaid needs NO_PAY", func(t *testing.T) {
		tr := order.NewCancelUnpaidTransition()
		assert.True(t, tr.Guard.Matches(unpaid))

		snap := validSnapshot(t)
		snap.Status = order.StatusCanceled
		canceled, err := order.RestoreOrder(snap)
		require.NoError(t, err)
		assert.False(t, tr.Guard.Matches(canceled))
	})

	t.Run("settle refund skips an identical status", func(t *testing.T) {
		snap := validSnapshot(t)
		snap.Status = order.StatusClosed
		snap.RefundStatus = order.RefundStatusSuccess
		settled, err := order.RestoreOrder(snap)
		require.NoError(t, err)

		assert.False(t, order.NewSettleRefundTransition(order.RefundStatusSuccess, "R1", "N1").Guard.Matches(settled))
		assert.True(t, order.NewSettleRefundTransition(order.RefundStatusFailed, "", "").Guard.Matches(settled))
	})
}

func TestOrder_Apply(t *testing.T) {
	o, err := order.RestoreOrder(validSnapshot(t))
	require.NoError(t, err)

	o.Apply(order.NewAttachTradeTransition(order.Trade{TradingOrderNo: "T9", Channel: order.ChannelWechatPay}))
	assert.Equal(t, "T9", o.TradingOrderNo())
	assert.Equal(t, order.ChannelWechatPay, o.TradingChannel())
	assert.Equal(t, order.PayStatusNoPay, o.PayStatus())

	o.Apply(order.NewSettleRefundTransition(order.RefundStatusFailed, "R1", ""))
	assert.Equal(t, order.RefundStatusFailed, o.RefundStatus())
	assert.Equal(t, "R1", o.Snapshot().RefundID)
}
