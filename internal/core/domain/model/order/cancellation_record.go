package order

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

// MaxReasonLength bounds the free-text cancellation reason, in runes.
const MaxReasonLength = 256

// OverdueCancellationReason is recorded when the system cancels an order that
// was not paid in time.
const OverdueCancellationReason = "payment not received within the deadline, canceled automatically"

var ErrCancellationRecordIsNotConstructed = errors.New("CancellationRecord must be created via NewCancellationRecord")

// CancellationRecord is the append-only audit entry written by every
// successful cancellation. At most one exists per order.
type CancellationRecord struct {
	id            kernel.UUID
	orderID       kernel.OrderID
	actor         kernel.Actor
	reason        string
	originStatus  Status
	canceledAt    time.Time
	isConstructed bool
}

func NewCancellationRecord(
	orderID kernel.OrderID,
	actor kernel.Actor,
	reason string,
	originStatus Status,
	at time.Time,
) (*CancellationRecord, error) {
	r := &CancellationRecord{
		id:            kernel.NewUUID(),
		originStatus:  originStatus,
		canceledAt:    at,
		isConstructed: true,
	}

	if err := errors.Join(
		orderID.Validate(),
		actor.Validate(),
		originStatus.Validate(),
		r.setReason(reason),
	); err != nil {
		return nil, err
	}

	r.orderID = orderID
	r.actor = actor
	return r, nil
}

// RestoreCancellationRecord rebuilds a record read from storage.
func RestoreCancellationRecord(
	id kernel.UUID,
	orderID kernel.OrderID,
	actor kernel.Actor,
	reason string,
	originStatus Status,
	at time.Time,
) (*CancellationRecord, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), actor.Validate()); err != nil {
		return nil, err
	}

	return &CancellationRecord{
		id:            id,
		orderID:       orderID,
		actor:         actor,
		reason:        reason,
		originStatus:  originStatus,
		canceledAt:    at,
		isConstructed: true,
	}, nil
}

func (r *CancellationRecord) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrCancellationRecordIsNotConstructed
	}
	return nil
}

func (r *CancellationRecord) ID() kernel.UUID {
	return r.id
}

func (r *CancellationRecord) OrderID() kernel.OrderID {
	return r.orderID
}

func (r *CancellationRecord) Actor() kernel.Actor {
	return r.actor
}

func (r *CancellationRecord) Reason() string {
	return r.reason
}

func (r *CancellationRecord) OriginStatus() Status {
	return r.originStatus
}

func (r *CancellationRecord) CanceledAt() time.Time {
	return r.canceledAt
}

func (r *CancellationRecord) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("cancellation reason")
	}
	if n := utf8.RuneCountInString(reason); n > MaxReasonLength {
		return errs.NewValueIsOutOfRangeError("cancellation reason length", n, 1, MaxReasonLength)
	}
	r.reason = reason
	return nil
}
