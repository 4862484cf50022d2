package ports

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"
)

// OrderIDGenerator mints globally unique, time-ordered order ids from a
// counter shared by every instance of the service. Gaps are allowed.
// kernel.ErrSequenceExhausted is returned once the counter is used up.
type OrderIDGenerator interface {
	Next(ctx context.Context) (kernel.OrderID, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
