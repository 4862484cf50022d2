package order_test

import (
	"testing"

	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidSnapshot(t *testing.T) order.Snapshot {
	t.Helper()
	snap := validSnapshot(t)
	snap.Status = order.StatusDispatching
	snap.PayStatus = order.PayStatusPaid
	snap.TradingOrderNo = "T1"
	snap.TradingChannel = order.ChannelAliPay
	snap.TransactionID = "X1"
	return snap
}

func TestNewRefundTask(t *testing.T) {
	t.Run("copies trade and real pay amount", func(t *testing.T) {
		o, err := order.RestoreOrder(paidSnapshot(t))
		require.NoError(t, err)

		task, err := order.NewRefundTask(o, testNow)

		require.NoError(t, err)
		require.NoError(t, task.Validate())
		assert.Equal(t, o.ID(), task.OrderID())
		assert.Equal(t, "T1", task.TradingOrderNo())
		assert.Equal(t, order.ChannelAliPay, task.Channel())
		assert.True(t, task.Amount().Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("needs a trading reference", func(t *testing.T) {
		snap := paidSnapshot(t)
		snap.TradingOrderNo = ""
		o, err := order.RestoreOrder(snap)
		require.NoError(t, err)

		_, err = order.NewRefundTask(o, testNow)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRefundResult(t *testing.T) {
	for _, tc := range []struct {
		state    order.RefundState
		status   order.RefundStatus
		terminal bool
	}{
		{order.RefundStateSuccess, order.RefundStatusSuccess, true},
		{order.RefundStateFailed, order.RefundStatusFailed, true},
		{order.RefundStateProcessing, order.RefundStatusPending, false},
		{order.RefundState("SOMETHING_NEW"), order.RefundStatusPending, false},
	} {
		t.Run(string(tc.state), func(t *testing.T) {
			r := order.RefundResult{State: tc.state, RefundID: "R1", RefundNo: "N1"}

			assert.Equal(t, tc.status, r.Status())

			tr, ok := r.Settlement()
			assert.Equal(t, tc.terminal, ok)
			if ok {
				assert.Equal(t, tc.status, *tr.Changes.RefundStatus)
				assert.Equal(t, "R1", tr.Changes.RefundID)
			}
		})
	}
}
