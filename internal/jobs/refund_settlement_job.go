package jobs

import (
	"context"
	"time"

	"orders/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type RefundSettler interface {
	Handle(ctx context.Context, cmd commands.SettleRefundsCommand) (commands.SettleRefundsReport, error)
}

// RefundSettlementJob drains the refund queue: every queued task is sent to
// the refund gateway until it reaches a final answer.
type RefundSettlementJob struct {
	handler   RefundSettler
	spec      string
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewRefundSettlementJob(handler RefundSettler, schedule Schedule, logger *zap.Logger) *RefundSettlementJob {
	logger = logger.With(zap.String("component", "refund_settlement_job"))
	return &RefundSettlementJob{
		handler:   handler,
		spec:      schedule.Spec,
		batchSize: schedule.BatchSize,
		timeout:   schedule.runTimeout(),
		cron:      newCron(logger),
		logger:    logger,
	}
}

func (j *RefundSettlementJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Refund settlement job started", zap.String("spec", j.spec), zap.Int("batch_size", j.batchSize))
	return nil
}

func (j *RefundSettlementJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Refund settlement job stopped")
}

func (j *RefundSettlementJob) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewSettleRefundsCommand(j.batchSize)
	if err != nil {
		j.logger.Error("Invalid refund settlement settings", zap.Error(err))
		return
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("Refund settlement failed", zap.Error(err))
		return
	}
	if report.Fetched > 0 {
		j.logger.Info("Refund settlement finished",
			zap.Int("fetched", report.Fetched),
			zap.Int("settled", report.Settled),
			zap.Int("pending", report.Pending),
			zap.Int("failed", report.Failed),
		)
	}
}
