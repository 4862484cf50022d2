package errs

import (
	"errors"
	"fmt"
)

var ErrDownstreamUnavailable = errors.New("downstream unavailable")

// DownstreamUnavailableError reports a failed call to a collaborating system
// (payment gateway, refund gateway, catalog). Callers treat it as transient.
type DownstreamUnavailableError struct {
	Service string
	Cause   error
}

func NewDownstreamUnavailableError(service string, cause error) *DownstreamUnavailableError {
	return &DownstreamUnavailableError{
		Service: service,
		Cause:   cause,
	}
}

func (e *DownstreamUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrDownstreamUnavailable, e.Service, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDownstreamUnavailable, e.Service)
}

// Unwrap exposes both the sentinel and the underlying cause, so errors.Is
// matches ErrDownstreamUnavailable as well as e.g. context.DeadlineExceeded.
func (e *DownstreamUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDownstreamUnavailable}
	}
	return []error{ErrDownstreamUnavailable, e.Cause}
}
