package commands_test

import (
	"errors"
	"testing"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type refundFixture struct {
	orders  *MockOrderRepository
	tasks   *MockRefundTaskRepository
	uow     *MockUoW
	factory *MockUoWFactory
	gateway *MockRefundGateway
}

func newRefundFixture() *refundFixture {
	f := &refundFixture{
		orders:  new(MockOrderRepository),
		tasks:   new(MockRefundTaskRepository),
		uow:     new(MockUoW),
		factory: new(MockUoWFactory),
		gateway: new(MockRefundGateway),
	}
	f.factory.On("Create").Return(f.uow)
	f.uow.On("OrderRepository").Return(f.orders).Maybe()
	f.uow.On("RefundTaskRepository").Return(f.tasks).Maybe()
	return f
}

func refundTask(t *testing.T, seq int64) *order.RefundTask {
	t.Helper()
	task, err := order.NewRefundTask(paidOrder(t, seq), testNow)
	require.NoError(t, err)
	return task
}

func TestSettleRefundsCommandHandler_Handle_MixedOutcomes(t *testing.T) {
	ctx := t.Context()
	succeeded := refundTask(t, 1)
	processing := refundTask(t, 2)
	failing := refundTask(t, 3)
	rejected := refundTask(t, 4)

	f := newRefundFixture()
	f.tasks.On("FetchBatch", ctx, 10).Return([]*order.RefundTask{succeeded, processing, failing, rejected}, nil).Once()

	byOrder := func(task *order.RefundTask) any {
		return mock.MatchedBy(func(req ports.RefundRequest) bool { return req.OrderID == task.OrderID() })
	}
	f.gateway.On("Refund", ctx, byOrder(succeeded)).
		Return(order.RefundResult{State: order.RefundStateSuccess, RefundID: "R1", RefundNo: "N1"}, nil).Once()
	f.gateway.On("Refund", ctx, byOrder(processing)).
		Return(order.RefundResult{State: order.RefundStateProcessing}, nil).Once()
	f.gateway.On("Refund", ctx, byOrder(failing)).
		Return(order.RefundResult{}, errs.NewDownstreamUnavailableError("alipay", errors.New("timeout"))).Once()
	f.gateway.On("Refund", ctx, byOrder(rejected)).
		Return(order.RefundResult{State: order.RefundStateFailed}, nil).Once()

	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.orders.On("ApplyTransition", ctx, succeeded.OrderID(), mock.MatchedBy(func(tr order.Transition) bool {
		return tr.Name == order.TransitionSettleRefund &&
			*tr.Changes.RefundStatus == order.RefundStatusSuccess &&
			tr.Changes.RefundID == "R1"
	})).Return(true, nil).Once()
	f.orders.On("ApplyTransition", ctx, rejected.OrderID(), mock.MatchedBy(func(tr order.Transition) bool {
		return tr.Changes.RefundStatus != nil && *tr.Changes.RefundStatus == order.RefundStatusFailed
	})).Return(true, nil).Once()
	f.tasks.On("Delete", ctx, succeeded.OrderID()).Return(nil).Once()
	f.tasks.On("Delete", ctx, rejected.OrderID()).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.uow.On("Rollback", ctx).Return(nil).Twice()

	cmd, err := commands.NewSettleRefundsCommand(10)
	require.NoError(t, err)
	h := commands.NewSettleRefundsCommandHandler(f.factory, f.gateway, nil, zap.NewNop())

	report, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Equal(t, commands.SettleRefundsReport{Fetched: 4, Settled: 2, Pending: 1, Failed: 1}, report)
	f.tasks.AssertNotCalled(t, "Delete", ctx, processing.OrderID())
	f.tasks.AssertNotCalled(t, "Delete", ctx, failing.OrderID())
	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.tasks.AssertExpectations(t)
}

func TestSettleRefundsCommandHandler_Handle_AlreadySettled_StillDeletesTask(t *testing.T) {
	ctx := t.Context()
	task := refundTask(t, 1)

	f := newRefundFixture()
	f.tasks.On("FetchBatch", ctx, 5).Return([]*order.RefundTask{task}, nil).Once()
	f.gateway.On("Refund", ctx, mock.Anything).Return(order.RefundResult{State: order.RefundStateSuccess}, nil).Once()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.orders.On("ApplyTransition", ctx, task.OrderID(), mock.Anything).Return(false, nil).Once(),
		f.tasks.On("Delete", ctx, task.OrderID()).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	cmd, _ := commands.NewSettleRefundsCommand(5)
	report, err := commands.NewSettleRefundsCommandHandler(f.factory, f.gateway, nil, zap.NewNop()).Handle(ctx, cmd)

	require.NoError(t, err)
	require.Equal(t, 1, report.Settled)
	f.tasks.AssertExpectations(t)
}

func TestSettleRefundsCommandHandler_Handle_FetchFails(t *testing.T) {
	ctx := t.Context()

	f := newRefundFixture()
	f.tasks.On("FetchBatch", ctx, 5).Return(nil, errors.New("connection refused")).Once()

	cmd, _ := commands.NewSettleRefundsCommand(5)
	_, err := commands.NewSettleRefundsCommandHandler(f.factory, f.gateway, nil, zap.NewNop()).Handle(ctx, cmd)

	require.Error(t, err)
}

func TestNewSettleRefundsCommand_InvalidBatch(t *testing.T) {
	_, err := commands.NewSettleRefundsCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestDispatchRefundCommandHandler_Handle(t *testing.T) {
	t.Run("settles the queued task", func(t *testing.T) {
		ctx := t.Context()
		task := refundTask(t, 1)

		f := newRefundFixture()
		f.tasks.On("Get", ctx, task.OrderID()).Return(task, nil).Once()
		f.gateway.On("Refund", ctx, mock.MatchedBy(func(req ports.RefundRequest) bool {
			return req.TradingOrderNo == "T1" && req.Amount.StringFixed(2) == "100.00"
		})).Return(order.RefundResult{State: order.RefundStateSuccess}, nil).Once()
		f.uow.On("Begin", ctx).Return(nil).Once()
		f.orders.On("ApplyTransition", ctx, task.OrderID(), mock.Anything).Return(true, nil).Once()
		f.tasks.On("Delete", ctx, task.OrderID()).Return(nil).Once()
		f.uow.On("Commit", ctx).Return(nil).Once()
		f.uow.On("Rollback", ctx).Return(nil).Once()

		cmd, err := commands.NewDispatchRefundCommand(task.OrderID())
		require.NoError(t, err)
		outcome, err := commands.NewDispatchRefundCommandHandler(f.factory, f.gateway, nil, zap.NewNop()).Handle(ctx, cmd)

		require.NoError(t, err)
		require.Equal(t, commands.RefundOutcomeSettled, outcome)
		f.tasks.AssertExpectations(t)
	})

	t.Run("missing task means already settled", func(t *testing.T) {
		ctx := t.Context()
		id := testOrderID(t, 1)

		f := newRefundFixture()
		f.tasks.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("refund task", id)).Once()

		cmd, _ := commands.NewDispatchRefundCommand(id)
		outcome, err := commands.NewDispatchRefundCommandHandler(f.factory, f.gateway, nil, zap.NewNop()).Handle(ctx, cmd)

		require.NoError(t, err)
		require.Equal(t, commands.RefundOutcomeSettled, outcome)
		f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	})

	t.Run("pending answer leaves the task", func(t *testing.T) {
		ctx := t.Context()
		task := refundTask(t, 1)

		f := newRefundFixture()
		f.tasks.On("Get", ctx, task.OrderID()).Return(task, nil).Once()
		f.gateway.On("Refund", ctx, mock.Anything).Return(order.RefundResult{State: order.RefundStateProcessing}, nil).Once()

		cmd, _ := commands.NewDispatchRefundCommand(task.OrderID())
		outcome, err := commands.NewDispatchRefundCommandHandler(f.factory, f.gateway, nil, zap.NewNop()).Handle(ctx, cmd)

		require.NoError(t, err)
		require.Equal(t, commands.RefundOutcomePending, outcome)
		f.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})
}
