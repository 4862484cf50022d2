package commands

import (
	"context"
	"errors"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ConfirmPaymentCommandHandler records a successful payment on an order.
// It is safe to call any number of times for the same payment, from the event
// consumer and from gateway polling concurrently: exactly one call writes.
type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

func NewConfirmPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		metrics:    m,
		logger:     logger.With(zap.String("component", "payment_reconciler")),
	}
}

// Handle applies the payment.
//
// Returns:
//   - nil when the payment was recorded, or was already recorded before
//   - ObjectNotFoundError when the order does not exist
//   - ValueIsRequiredError when the transaction id or trading order number is missing
//   - InvalidTransitionError when the order was canceled before the payment
//     arrived, or by a cancellation that raced it
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	repo := h.uowFactory.Create().OrderRepository()

	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeError)
		return err
	}

	if o.IsInconsistentlyDispatched() {
		h.metrics.RecordInconsistency("dispatching_unpaid")
		h.logger.Warn("order is dispatching but unpaid, completing payment record",
			zap.Stringer("order_id", o.ID()))
	}

	transition, ok, err := o.PaymentConfirmation(cmd.Payment())
	if err != nil {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeError)
		if errors.Is(err, errs.ErrInvalidTransition) {
			h.metrics.RecordInconsistency("paid_after_cancel")
			h.logger.Error("payment received for an order that can no longer be paid",
				zap.Stringer("order_id", o.ID()),
				zap.Stringer("status", o.Status()),
				zap.String("trading_order_no", cmd.Payment().TradingOrderNo),
				zap.String("transaction_id", cmd.Payment().TransactionID))
		}
		return err
	}
	if !ok {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeSkipped)
		return nil
	}

	applied, err := repo.ApplyTransition(ctx, o.ID(), transition)
	if err != nil {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeError)
		return err
	}

	h.metrics.RecordTransition(transition.Name, applied)
	if !applied {
		return h.lostRace(ctx, repo, cmd)
	}

	h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeApplied)
	h.logger.Info("payment confirmed",
		zap.Stringer("order_id", o.ID()),
		zap.String("source", cmd.Source()),
		zap.String("trading_order_no", cmd.Payment().TradingOrderNo),
		zap.Stringer("channel", cmd.Payment().Channel))

	return nil
}

// lostRace tells a concurrent duplicate of this payment from a concurrent
// cancellation. Only the latter is an error.
func (h ConfirmPaymentCommandHandler) lostRace(ctx context.Context, repo ports.OrderRepository, cmd ConfirmPaymentCommand) error {
	current, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeError)
		return err
	}

	if current.PayStatus() != order.PayStatusNoPay {
		h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeSkipped)
		h.logger.Debug("payment already reconciled", zap.Stringer("order_id", current.ID()))
		return nil
	}

	h.metrics.RecordPaymentConfirmation(cmd.Source(), metrics.OutcomeError)
	h.metrics.RecordInconsistency("paid_after_cancel")
	h.logger.Error("payment lost to a concurrent cancellation",
		zap.Stringer("order_id", current.ID()),
		zap.Stringer("status", current.Status()),
		zap.String("trading_order_no", cmd.Payment().TradingOrderNo),
		zap.String("transaction_id", cmd.Payment().TransactionID))
	return errs.NewInvalidTransitionError("order", current.ID(), "confirm payment of", current.Status().String())
}
