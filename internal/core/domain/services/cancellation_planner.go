package services

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
)

// CancellationPlan is everything one cancellation writes. The three parts are
// persisted in one unit of work, and only if Transition applies.
type CancellationPlan struct {
	Transition order.Transition
	Record     *order.CancellationRecord

	// RefundTask is nil when nothing was paid or the paid amount is zero.
	RefundTask *order.RefundTask

	// AlreadyCanceled is set when the order is already CANCELED or CLOSED.
	// Nothing must be written.
	AlreadyCanceled bool
}

// CancellationPlanner is a domain service choosing the cancellation branch
// from the order's current state.
//
// Business rules:
//   - NO_PAY orders become CANCELED; no money moved, so no refund
//   - DISPATCHING orders become CLOSED and a refund of the real pay amount is queued
//   - a DISPATCHING order with a zero real pay amount closes as REFUND_SUCCESS, no task
//   - a DISPATCHING order that was never paid closes with refund status NONE, no task
//   - CANCELED or CLOSED orders are left alone (a repeated request is a no-op)
//   - any other state rejects the request with InvalidTransitionError
//
// Example usage:
//
//	plan, err := services.NewCancellationPlanner().Plan(o, actor, "changed my mind", time.Now())
//	if err != nil {
//	    return err
//	}
//	if plan.AlreadyCanceled {
//	    return nil
//	}
//	applied, err := orders.ApplyTransition(ctx, o.ID(), plan.Transition)
type CancellationPlanner struct{}

func NewCancellationPlanner() CancellationPlanner {
	return CancellationPlanner{}
}

// Plan computes the cancellation of o.
//
// Parameters:
//   - o: the order as currently loaded
//   - actor: who asked; recorded on the cancellation record
//   - reason: free text, required
//   - now: timestamp for the record and the refund task
//
// Returns:
//   - CancellationPlan: the transition and the records to persist
//   - error: InvalidTransitionError for states that cannot be canceled,
//     or validation errors for the actor and reason
func (p CancellationPlanner) Plan(
	o *order.Order,
	actor kernel.Actor,
	reason string,
	now time.Time,
) (CancellationPlan, error) {
	if err := o.Validate(); err != nil {
		return CancellationPlan{}, err
	}

	status := o.Status()
	if status.IsCancellationResult() {
		return CancellationPlan{AlreadyCanceled: true}, nil
	}

	var transition order.Transition
	var task *order.RefundTask

	switch status {
	case order.StatusNoPay:
		transition = order.NewCancelUnpaidTransition()

	case order.StatusDispatching:
		refund, refundTask, err := p.planRefund(o, now)
		if err != nil {
			return CancellationPlan{}, err
		}
		transition = order.NewCloseForRefundTransition(refund)
		task = refundTask

	default:
		return CancellationPlan{}, errs.NewInvalidTransitionError("order", o.ID(), "cancel", status.String())
	}

	record, err := order.NewCancellationRecord(o.ID(), actor, reason, status, now)
	if err != nil {
		return CancellationPlan{}, err
	}

	return CancellationPlan{
		Transition: transition,
		Record:     record,
		RefundTask: task,
	}, nil
}

func (p CancellationPlanner) planRefund(o *order.Order, now time.Time) (order.RefundStatus, *order.RefundTask, error) {
	if !o.IsPaid() {
		return order.RefundStatusNone, nil, nil
	}
	if !o.RealPayAmount().IsPositive() {
		return order.RefundStatusSuccess, nil, nil
	}

	task, err := order.NewRefundTask(o, now)
	if err != nil {
		return 0, nil, err
	}
	return order.RefundStatusPending, task, nil
}
