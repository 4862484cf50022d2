package errs

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError reports an operation that the current lifecycle state
// of an entity does not permit. The request was understood but rejected.
type InvalidTransitionError struct {
	Entity string
	ID     any
	Action string
	State  string
	Cause  error
}

func NewInvalidTransitionError(entity string, id any, action, state string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Entity: entity,
		ID:     id,
		Action: action,
		State:  state,
	}
}

func NewInvalidTransitionErrorWithCause(entity string, id any, action, state string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{
		Entity: entity,
		ID:     id,
		Action: action,
		State:  state,
		Cause:  cause,
	}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s %s %s in state %s",
		ErrInvalidTransition, e.Action, e.Entity, sanitize(e.ID), e.State)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
