// Package errs provides the typed errors shared by the order service.
//
// Every error kind follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ...) to match with errors.Is
//   - a struct carrying the details, built by NewXxxError / NewXxxErrorWithCause
//   - Unwrap returning the sentinel
//
// The kinds map onto how the service reacts to a failure:
//   - ObjectNotFoundError: the referenced order or task does not exist
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - InvalidTransitionError: the order is in a state that rejects the operation
//   - DownstreamUnavailableError: a gateway or collaborator call failed and may be retried
//
// A conditional write that matched no row is not an error at all; repositories
// report it through an applied flag.
package errs
