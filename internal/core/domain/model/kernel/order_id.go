package kernel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"orders/internal/pkg/errs"
)

// SequenceSpan is the exclusive upper bound of the per-id sequence part.
// An id is yyMMdd * SequenceSpan + sequence, so the sequence occupies the
// low 13 decimal digits.
const SequenceSpan int64 = 10_000_000_000_000

// sortKeySpan is how many low digits of the id are folded into a sort key.
const sortKeySpan = 100_000

var (
	// ErrSequenceExhausted is returned when the shared counter has reached
	// SequenceSpan. No further ids can be minted without colliding with the
	// date prefix, so callers must fail the request.
	ErrSequenceExhausted = errors.New("order id sequence exhausted")

	ErrOrderIDIsRequired = errs.NewValueIsRequiredError("order id")
)

// OrderID identifies an order. Ids minted on the same day compare in the order
// their sequence numbers were drawn, and ids from a later day always compare
// greater than ids from an earlier one.
//
// Example:
//
//	id, err := kernel.NewOrderID(time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC), 42)
//	// id == 2510180000000000042
//	id.Date(time.UTC) // 2025-10-18 00:00:00 +0000 UTC
type OrderID int64

// NewOrderID composes an id from the calendar day it is minted on and a value
// drawn from the shared counter.
//
// Parameters:
//   - day: the minting time; only its calendar date (in its own location) is used
//   - sequence: the counter value, must be in [1, SequenceSpan)
//
// Returns:
//   - ErrSequenceExhausted (wrapped) when sequence >= SequenceSpan
//   - ValueIsOutOfRangeError when sequence < 1 or the date does not fit an int64 id
func NewOrderID(day time.Time, sequence int64) (OrderID, error) {
	if sequence >= SequenceSpan {
		return 0, fmt.Errorf("%w: counter reached %d", ErrSequenceExhausted, sequence)
	}
	if sequence < 1 {
		return 0, errs.NewValueIsOutOfRangeError("sequence", sequence, 1, SequenceSpan-1)
	}

	prefix := int64(day.Year()%100)*10_000 + int64(day.Month())*100 + int64(day.Day())
	if prefix > math.MaxInt64/SequenceSpan {
		return 0, errs.NewValueIsOutOfRangeError("date prefix", prefix, 1, math.MaxInt64/SequenceSpan)
	}

	return OrderID(prefix*SequenceSpan + sequence), nil
}

// ParseOrderID parses the decimal form produced by String.
func ParseOrderID(s string) (OrderID, error) {
	if s == "" {
		return 0, ErrOrderIDIsRequired
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}

	id := OrderID(v)
	if err = id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// Validate checks that the id is positive and carries a real calendar date.
func (id OrderID) Validate() error {
	if id <= 0 {
		return ErrOrderIDIsRequired
	}
	if id.Sequence() == 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d has no sequence part", int64(id)))
	}

	prefix := int64(id) / SequenceSpan
	year, month, day := int(prefix/10_000), time.Month(prefix/100%100), int(prefix%100)
	decoded := time.Date(2000+year, month, day, 0, 0, 0, 0, time.UTC)
	if decoded.Month() != month || decoded.Day() != day {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d has no valid date prefix", int64(id)))
	}
	return nil
}

// Date returns midnight of the day the id was minted on, in loc.
func (id OrderID) Date(loc *time.Location) time.Time {
	prefix := int64(id) / SequenceSpan
	return time.Date(2000+int(prefix/10_000), time.Month(prefix/100%100), int(prefix%100), 0, 0, 0, 0, loc)
}

// Sequence returns the counter value the id was built from.
func (id OrderID) Sequence() int64 {
	return int64(id) % SequenceSpan
}

// SortKey returns the listing key for an order served at serveStart: the
// epoch milliseconds of serveStart plus the last five digits of the id.
func (id OrderID) SortKey(serveStart time.Time) int64 {
	return serveStart.UnixMilli() + int64(id)%sortKeySpan
}

func (id OrderID) Int64() int64 {
	return int64(id)
}

func (id OrderID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
