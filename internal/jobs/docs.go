// Package jobs provides the periodic sweeps of the order service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, seconds-resolution specs).
// Each job wraps one command handler and never overlaps with itself.
//
// # Available Jobs
//
// 1. TimeoutSweepJob - cancels orders still unpaid after the payment deadline
// 2. RefundSettlementJob - retries queued refunds until the gateway gives a final answer
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewTimeoutSweepJob(sweepHandler, jobs.Schedule{Spec: "0 * * * * *", BatchSize: 100}, 0, logger),
//		jobs.NewRefundSettlementJob(settleHandler, jobs.Schedule{Spec: "*/30 * * * * *", BatchSize: 100}, logger),
//	)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Errors of single orders are counted by the handlers; the jobs only log
// failures of a whole run. Nothing is lost by a failed run: unpaid orders and
// queued refunds stay where the next run finds them.
package jobs
