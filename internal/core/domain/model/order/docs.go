// Package order models the purchase order aggregate and the records that hang
// off its lifecycle.
//
// The package includes:
//   - Order: the aggregate root with its three status dimensions (order, pay, refund)
//   - Transition: a guarded, single-row state change that a store applies atomically
//   - CancellationRecord: who canceled an order, when, and why
//   - RefundTask: the durable "refund pending" marker drained by the refund settlement
//
// The aggregate never mutates persisted state on its own. Instead it hands out
// Transitions whose Guard describes the state they were computed from. Several
// independent triggers (API calls, payment events, timers) may compute the same
// transition concurrently. The store's conditional write makes exactly one of
// them take effect; the others observe zero affected rows and treat the work as
// already done.
package order
