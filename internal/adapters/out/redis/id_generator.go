// Package redis mints order ids from a counter kept in Redis.
package redis

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultSequenceKey is the counter every instance increments.
const DefaultSequenceKey = "orders:id:sequence"

var _ ports.OrderIDGenerator = (*SequenceIDGenerator)(nil)

// SequenceIDGenerator combines the current calendar day with a value drawn by
// INCR from one Redis key. The key is never reset, so ids stay unique across
// days and instances; the date prefix only makes them time-ordered.
type SequenceIDGenerator struct {
	client   goredis.Cmdable
	key      string
	clock    ports.Clock
	location *time.Location
}

// NewSequenceIDGenerator builds a generator. An empty key uses
// DefaultSequenceKey and a nil location uses UTC for the date prefix.
func NewSequenceIDGenerator(client goredis.Cmdable, key string, clock ports.Clock, location *time.Location) (*SequenceIDGenerator, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("redis client")
	}
	if clock == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	if key == "" {
		key = DefaultSequenceKey
	}
	if location == nil {
		location = time.UTC
	}

	return &SequenceIDGenerator{client: client, key: key, clock: clock, location: location}, nil
}

// Next draws the next counter value. It returns kernel.ErrSequenceExhausted
// once the counter no longer fits the id, and a DownstreamUnavailableError
// when Redis cannot be reached.
func (g *SequenceIDGenerator) Next(ctx context.Context) (kernel.OrderID, error) {
	seq, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return 0, errs.NewDownstreamUnavailableError("redis", err)
	}

	id, err := kernel.NewOrderID(g.clock.Now().In(g.location), seq)
	if err != nil {
		if errors.Is(err, kernel.ErrSequenceExhausted) {
			return 0, err
		}
		return 0, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return id, nil
}
