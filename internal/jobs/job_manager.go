package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultRunTimeout = 5 * time.Minute

// Schedule configures one periodic sweep.
type Schedule struct {
	// Spec is a cron expression with a leading seconds field.
	Spec      string
	BatchSize int
	// RunTimeout bounds a single run; zero means five minutes.
	RunTimeout time.Duration
}

func (s Schedule) runTimeout() time.Duration {
	if s.RunTimeout <= 0 {
		return defaultRunTimeout
	}
	return s.RunTimeout
}

// newCron builds a scheduler that logs through logger and never overlaps
// runs of the same job.
func newCron(logger *zap.Logger) *cron.Cron {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	return cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	timeoutSweepJob     *TimeoutSweepJob
	refundSettlementJob *RefundSettlementJob
}

func NewJobManager(timeoutSweep *TimeoutSweepJob, refundSettlement *RefundSettlementJob) *JobManager {
	return &JobManager{
		timeoutSweepJob:     timeoutSweep,
		refundSettlementJob: refundSettlement,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.timeoutSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start timeout sweep job: %w", err)
	}

	if err := jm.refundSettlementJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.timeoutSweepJob.Stop()
		return fmt.Errorf("failed to start refund settlement job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running sweeps.
func (jm *JobManager) StopAll() {
	jm.refundSettlementJob.Stop()
	jm.timeoutSweepJob.Stop()
}
