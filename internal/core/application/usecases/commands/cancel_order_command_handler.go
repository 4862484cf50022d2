package commands

import (
	"context"

	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// CancelOrderCommandHandler cancels an order and, when money was taken,
// queues its refund.
//
// The order transition, the cancellation record and the refund task are
// written in one unit of work, and only when the conditional transition
// applied. Losing the race to another cancellation, or to the timeout sweep,
// is not an error: the request is treated as already handled.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	planner    services.CancellationPlanner
	refunds    RefundDispatcher
	clock      ports.Clock
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

// NewCancelOrderCommandHandler creates the handler. refunds may be nil, in
// which case refunds wait for the settlement sweep.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	planner services.CancellationPlanner,
	refunds RefundDispatcher,
	clock ports.Clock,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		refunds:    refunds,
		clock:      clock,
		metrics:    m,
		logger:     logger.With(zap.String("component", "cancellation_coordinator")),
	}
}

// Handle cancels the order.
//
// Returns:
//   - nil when the order was canceled by this call or had been canceled before
//   - ObjectNotFoundError when the order does not exist
//   - InvalidTransitionError when the order is in service or beyond
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	plan, err := h.planner.Plan(o, cmd.Actor(), cmd.Reason(), h.clock.Now())
	if err != nil {
		return err
	}
	if plan.AlreadyCanceled {
		h.logger.Debug("order already canceled", zap.Stringer("order_id", o.ID()), zap.Stringer("status", o.Status()))
		return nil
	}

	applied, err := uow.OrderRepository().ApplyTransition(ctx, o.ID(), plan.Transition)
	if err != nil {
		return err
	}
	if !applied {
		h.metrics.RecordTransition(plan.Transition.Name, false)
		h.logger.Debug("cancellation already handled", zap.Stringer("order_id", o.ID()))
		return nil
	}

	if err = uow.CancellationRepository().Add(ctx, plan.Record); err != nil {
		return err
	}
	if plan.RefundTask != nil {
		if err = uow.RefundTaskRepository().Add(ctx, plan.RefundTask); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.RecordTransition(plan.Transition.Name, true)
	h.logger.Info("order canceled",
		zap.Stringer("order_id", o.ID()),
		zap.Stringer("from", o.Status()),
		zap.Stringer("actor", cmd.Actor()),
		zap.Bool("refund_queued", plan.RefundTask != nil))

	if plan.RefundTask != nil && h.refunds != nil && !h.refunds.Dispatch(o.ID()) {
		h.metrics.RecordRefundDispatchDropped()
		h.logger.Warn("refund attempt dropped, left to the settlement sweep", zap.Stringer("order_id", o.ID()))
	}

	return nil
}
