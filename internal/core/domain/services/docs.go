// Package services provides domain services that span more than one entity of
// the order model.
//
// The package includes:
//   - CancellationPlanner: decides how an order is canceled and which records
//     the cancellation produces
package services
