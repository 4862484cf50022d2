package order_test

import (
	"testing"

	"orders/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	for _, s := range []order.Status{
		order.StatusNoPay, order.StatusDispatching, order.StatusInService,
		order.StatusAwaitingReview, order.StatusCompleted, order.StatusCanceled, order.StatusClosed,
	} {
		require.NoError(t, s.Validate(), s.String())

		parsed, err := order.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	require.Error(t, order.Status(200).Validate())
	assert.Equal(t, "UNKNOWN", order.Status(200).String())

	assert.True(t, order.StatusCanceled.IsCancellationResult())
	assert.True(t, order.StatusClosed.IsCancellationResult())
	assert.False(t, order.StatusCompleted.IsCancellationResult())
}

func TestPayAndRefundStatus(t *testing.T) {
	require.NoError(t, order.PayStatusNoPay.Validate())
	require.NoError(t, order.PayStatusPaid.Validate())
	require.Error(t, order.PayStatusUnknown.Validate())

	require.NoError(t, order.RefundStatusNone.Validate())
	require.Error(t, order.RefundStatus(4).Validate())
	assert.True(t, order.RefundStatusSuccess.IsTerminal())
	assert.True(t, order.RefundStatusFailed.IsTerminal())
	assert.False(t, order.RefundStatusPending.IsTerminal())
	assert.Equal(t, "REFUNDING", order.RefundStatusPending.String())
}

func TestTradingChannel(t *testing.T) {
	require.NoError(t, order.ChannelAliPay.Validate())
	require.NoError(t, order.ChannelWechatPay.Validate())
	require.Error(t, order.TradingChannel("CASH").Validate())
}
