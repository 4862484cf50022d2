// Package workers runs background work that is triggered by requests rather
// than by the scheduler.
package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"

	"go.uber.org/zap"
)

const defaultAttemptTimeout = 10 * time.Second

var _ commands.RefundDispatcher = (*RefundPool)(nil)

type RefundAttempter interface {
	Handle(ctx context.Context, cmd commands.DispatchRefundCommand) (commands.RefundOutcome, error)
}

type RefundPoolOptions struct {
	Workers        int
	QueueSize      int
	AttemptTimeout time.Duration
}

// RefundPool makes the first refund attempt for freshly closed orders on a
// fixed number of goroutines. Dispatch never blocks the caller: when the
// queue is full the attempt is dropped and the settlement sweep refunds the
// order later. Failed attempts are not retried here for the same reason.
type RefundPool struct {
	attempter RefundAttempter
	queue     chan kernel.OrderID
	workers   int
	timeout   time.Duration
	logger    *zap.Logger

	stopped atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRefundPool(attempter RefundAttempter, opts RefundPoolOptions, logger *zap.Logger) *RefundPool {
	workers := max(opts.Workers, 1)
	queueSize := max(opts.QueueSize, 0)
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	return &RefundPool{
		attempter: attempter,
		queue:     make(chan kernel.OrderID, queueSize),
		workers:   workers,
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "refund-pool")),
	}
}

// Start launches the workers. They stop when ctx is canceled or Stop is called.
func (p *RefundPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := range p.workers {
		p.wg.Add(1)
		go p.work(ctx, i)
	}
	p.logger.Info("Refund pool started", zap.Int("workers", p.workers), zap.Int("queue_size", cap(p.queue)))
}

// Stop cancels in-flight attempts and waits for the workers to exit. Queued
// attempts are abandoned to the settlement sweep.
func (p *RefundPool) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Refund pool stopped", zap.Int("abandoned", len(p.queue)))
}

// Dispatch queues a first attempt and reports whether it was accepted.
func (p *RefundPool) Dispatch(orderID kernel.OrderID) bool {
	if p.stopped.Load() {
		return false
	}

	select {
	case p.queue <- orderID:
		return true
	default:
		return false
	}
}

func (p *RefundPool) work(ctx context.Context, worker int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case orderID := <-p.queue:
			p.attempt(ctx, worker, orderID)
		}
	}
}

func (p *RefundPool) attempt(ctx context.Context, worker int, orderID kernel.OrderID) {
	log := p.logger.With(zap.Int("worker", worker), zap.String("order_id", orderID.String()))

	cmd, err := commands.NewDispatchRefundCommand(orderID)
	if err != nil {
		log.Error("Invalid refund dispatch", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outcome, err := p.attempter.Handle(ctx, cmd)
	if err != nil {
		log.Warn("First refund attempt failed, leaving it to the sweep", zap.Error(err))
		return
	}
	log.Debug("First refund attempt finished", zap.String("outcome", string(outcome)))
}
