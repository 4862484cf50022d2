package commands

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// OrderCanceler is the cancellation entry point the sweep routes through.
type OrderCanceler interface {
	Handle(ctx context.Context, cmd CancelOrderCommand) error
}

// SweepExpiredUnpaidCommandHandler is the timeout sweeper. It only finds
// candidates; every cancellation goes through the regular cancellation path,
// whose conditional write makes a payment that lands meanwhile win.
type SweepExpiredUnpaidCommandHandler struct {
	uowFactory OrderUoWFactory
	canceler   OrderCanceler
	clock      ports.Clock
	metrics    *metrics.OrderMetrics
	logger     *zap.Logger
}

func NewSweepExpiredUnpaidCommandHandler(
	uowFactory OrderUoWFactory,
	canceler OrderCanceler,
	clock ports.Clock,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) SweepExpiredUnpaidCommandHandler {
	return SweepExpiredUnpaidCommandHandler{
		uowFactory: uowFactory,
		canceler:   canceler,
		clock:      clock,
		metrics:    m,
		logger:     logger.With(zap.String("component", "timeout_sweeper")),
	}
}

// Handle cancels one batch of overdue orders. Failures on single orders are
// logged and counted; only a failure to find candidates is returned.
func (h SweepExpiredUnpaidCommandHandler) Handle(
	ctx context.Context,
	cmd SweepExpiredUnpaidCommand,
) (SweepExpiredUnpaidReport, error) {
	if err := cmd.Validate(); err != nil {
		return SweepExpiredUnpaidReport{}, err
	}

	cutoff := h.clock.Now().Add(-cmd.Grace())
	ids, err := h.uowFactory.Create().OrderRepository().FindOverdueUnpaid(ctx, cutoff, cmd.BatchSize())
	if err != nil {
		return SweepExpiredUnpaidReport{}, err
	}

	report := SweepExpiredUnpaidReport{Found: len(ids)}
	h.metrics.RecordSweep("expired_unpaid", len(ids))

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err = h.cancel(ctx, id); err != nil {
			report.Failed++
			h.logger.Warn("overdue order not canceled", zap.Stringer("order_id", id), zap.Error(err))
		}
	}

	if report.Found > 0 {
		h.logger.Info("expired unpaid sweep finished",
			zap.Int("found", report.Found),
			zap.Int("failed", report.Failed))
	}

	return report, nil
}

func (h SweepExpiredUnpaidCommandHandler) cancel(ctx context.Context, id kernel.OrderID) error {
	cmd, err := NewCancelOrderCommand(id, kernel.SystemActor(), order.OverdueCancellationReason)
	if err != nil {
		return err
	}
	return h.canceler.Handle(ctx, cmd)
}
