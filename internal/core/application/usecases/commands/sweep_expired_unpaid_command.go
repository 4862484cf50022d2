package commands

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrSweepExpiredUnpaidCommandIsNotConstructed = errors.New(
	"SweepExpiredUnpaidCommand must be created via NewSweepExpiredUnpaidCommand constructor",
)

// SweepExpiredUnpaidCommand cancels up to BatchSize orders left unpaid for
// longer than the grace period.
type SweepExpiredUnpaidCommand struct { //nolint:recvcheck //using for validation
	batchSize int
	grace     time.Duration

	guard guard.ConstructorGuard
}

// NewSweepExpiredUnpaidCommand validates the sweep parameters. A zero grace
// uses order.PaymentDeadline.
func NewSweepExpiredUnpaidCommand(batchSize int, grace time.Duration) (SweepExpiredUnpaidCommand, error) {
	if batchSize <= 0 {
		return SweepExpiredUnpaidCommand{}, errs.NewValueIsInvalidError("batch size")
	}
	if grace < 0 {
		return SweepExpiredUnpaidCommand{}, errs.NewValueIsInvalidError("grace")
	}
	if grace == 0 {
		grace = order.PaymentDeadline
	}

	return SweepExpiredUnpaidCommand{batchSize: batchSize, grace: grace, guard: guard.NewConstructorGuard()}, nil
}

func (c SweepExpiredUnpaidCommand) Validate() error {
	return c.guard.Validate(ErrSweepExpiredUnpaidCommandIsNotConstructed)
}

func (c SweepExpiredUnpaidCommand) BatchSize() int {
	return c.batchSize
}

func (c SweepExpiredUnpaidCommand) Grace() time.Duration {
	return c.grace
}

type SweepExpiredUnpaidReport struct {
	Found  int
	Failed int
}
