package commands

import (
	"context"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// RefundOutcome is what one settlement attempt did with a refund task.
type RefundOutcome string

const (
	RefundOutcomeSettled RefundOutcome = "settled"
	RefundOutcomePending RefundOutcome = "pending"
	RefundOutcomeError   RefundOutcome = "error"
)

// refundSettler runs one refund attempt for one task. The sweep and the
// per-cancellation dispatch share it so that both apply results identically.
type refundSettler struct {
	uowFactory UoWFactory
	gateway    ports.RefundGateway
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

// settle asks the gateway to refund the task and, on a final answer, records
// it on the order and removes the task in one unit of work. A pending answer
// or a gateway failure leaves everything untouched.
func (s refundSettler) settle(ctx context.Context, task *order.RefundTask) (RefundOutcome, error) {
	log := s.logger.With(zap.Stringer("order_id", task.OrderID()))

	result, err := s.gateway.Refund(ctx, ports.RefundRequest{
		OrderID:        task.OrderID(),
		TradingOrderNo: task.TradingOrderNo(),
		Channel:        task.Channel(),
		Amount:         task.Amount(),
	})
	if err != nil {
		s.metrics.RecordRefundSettlement(string(RefundOutcomeError))
		log.Warn("refund request failed, task stays queued", zap.Error(err))
		return RefundOutcomeError, err
	}

	transition, final := result.Settlement()
	if !final {
		s.metrics.RecordRefundSettlement(string(RefundOutcomePending))
		log.Debug("refund still processing")
		return RefundOutcomePending, nil
	}

	applied, err := s.apply(ctx, task.OrderID(), transition)
	if err != nil {
		s.metrics.RecordRefundSettlement(string(RefundOutcomeError))
		log.Error("recording refund result failed", zap.Error(err))
		return RefundOutcomeError, err
	}

	s.metrics.RecordTransition(transition.Name, applied)
	s.metrics.RecordRefundSettlement(strings.ToLower(result.Status().String()))
	log.Info("refund settled",
		zap.Stringer("refund_status", result.Status()),
		zap.String("refund_id", result.RefundID),
		zap.Bool("applied", applied))

	return RefundOutcomeSettled, nil
}

// apply writes the final refund status and deletes the task. The task goes
// even when the status was already recorded by a concurrent attempt.
func (s refundSettler) apply(ctx context.Context, orderID kernel.OrderID, transition order.Transition) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	applied, err := uow.OrderRepository().ApplyTransition(ctx, orderID, transition)
	if err != nil {
		return false, err
	}
	if err = uow.RefundTaskRepository().Delete(ctx, orderID); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return applied, nil
}
