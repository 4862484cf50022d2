package jobs

import (
	"context"
	"time"

	"orders/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type UnpaidSweeper interface {
	Handle(ctx context.Context, cmd commands.SweepExpiredUnpaidCommand) (commands.SweepExpiredUnpaidReport, error)
}

// TimeoutSweepJob cancels orders left unpaid past the payment deadline.
// A run that is still going when the next one is due is skipped.
type TimeoutSweepJob struct {
	handler   UnpaidSweeper
	spec      string
	batchSize int
	grace     time.Duration
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewTimeoutSweepJob(handler UnpaidSweeper, schedule Schedule, grace time.Duration, logger *zap.Logger) *TimeoutSweepJob {
	logger = logger.With(zap.String("component", "timeout_sweep_job"))
	return &TimeoutSweepJob{
		handler:   handler,
		spec:      schedule.Spec,
		batchSize: schedule.BatchSize,
		grace:     grace,
		timeout:   schedule.runTimeout(),
		cron:      newCron(logger),
		logger:    logger,
	}
}

func (j *TimeoutSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Timeout sweep job started", zap.String("spec", j.spec), zap.Int("batch_size", j.batchSize))
	return nil
}

// Stop waits for a running sweep to finish.
func (j *TimeoutSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Timeout sweep job stopped")
}

// RunOnce performs a single sweep.
func (j *TimeoutSweepJob) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewSweepExpiredUnpaidCommand(j.batchSize, j.grace)
	if err != nil {
		j.logger.Error("Invalid timeout sweep settings", zap.Error(err))
		return
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("Timeout sweep failed", zap.Error(err))
		return
	}
	if report.Found > 0 {
		j.logger.Info("Timeout sweep finished", zap.Int("found", report.Found), zap.Int("failed", report.Failed))
	}
}
