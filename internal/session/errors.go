package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition matches every TransitionError.
var ErrInvalidTransition = errors.New("invalid session state transition")

// TransitionError is returned when an operation is not allowed in the
// current state. The controller is left unchanged.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
