package commands

import (
	"context"
	"errors"

	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/metrics"

	"go.uber.org/zap"
)

// SettleRefundsCommandHandler is the refund reconciler: it walks the refund
// queue and settles every task the gateway has a final answer for.
//
// A failing task never stops the batch. Tasks stay queued until the gateway
// reports SUCCESS or FAIL.
type SettleRefundsCommandHandler struct {
	settler refundSettler
	logger  *zap.Logger
}

func NewSettleRefundsCommandHandler(
	uowFactory UoWFactory,
	gateway ports.RefundGateway,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) SettleRefundsCommandHandler {
	logger = logger.With(zap.String("component", "refund_reconciler"))
	return SettleRefundsCommandHandler{
		settler: refundSettler{uowFactory: uowFactory, gateway: gateway, metrics: m, logger: logger},
		logger:  logger,
	}
}

// Handle settles one batch. Only a failure to read the queue is returned.
func (h SettleRefundsCommandHandler) Handle(ctx context.Context, cmd SettleRefundsCommand) (SettleRefundsReport, error) {
	if err := cmd.Validate(); err != nil {
		return SettleRefundsReport{}, err
	}

	tasks, err := h.settler.uowFactory.Create().RefundTaskRepository().FetchBatch(ctx, cmd.BatchSize())
	if err != nil {
		return SettleRefundsReport{}, err
	}

	report := SettleRefundsReport{Fetched: len(tasks)}
	h.settler.metrics.RecordSweep("refund_settlement", len(tasks))

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		outcome, _ := h.settler.settle(ctx, task)
		switch outcome {
		case RefundOutcomeSettled:
			report.Settled++
		case RefundOutcomePending:
			report.Pending++
		case RefundOutcomeError:
			report.Failed++
		}
	}

	if report.Fetched > 0 {
		h.logger.Info("refund settlement sweep finished",
			zap.Int("fetched", report.Fetched),
			zap.Int("settled", report.Settled),
			zap.Int("pending", report.Pending),
			zap.Int("failed", report.Failed))
	}

	return report, nil
}

// DispatchRefundCommandHandler makes the first refund attempt for one order.
type DispatchRefundCommandHandler struct {
	settler refundSettler
}

func NewDispatchRefundCommandHandler(
	uowFactory UoWFactory,
	gateway ports.RefundGateway,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) DispatchRefundCommandHandler {
	return DispatchRefundCommandHandler{
		settler: refundSettler{
			uowFactory: uowFactory,
			gateway:    gateway,
			metrics:    m,
			logger:     logger.With(zap.String("component", "refund_dispatch")),
		},
	}
}

// Handle settles the order's refund task if it is still queued. A missing
// task means the sweep got there first.
func (h DispatchRefundCommandHandler) Handle(ctx context.Context, cmd DispatchRefundCommand) (RefundOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return RefundOutcomeError, err
	}

	task, err := h.settler.uowFactory.Create().RefundTaskRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return RefundOutcomeSettled, nil
		}
		return RefundOutcomeError, err
	}

	return h.settler.settle(ctx, task)
}
