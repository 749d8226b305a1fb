package webcodecs

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnknownCodec           = errors.New("unknown codec")
	ErrInvalidDimensions      = errors.New("invalid dimensions")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidScalabilityMode = errors.New("unsupported scalability mode")
	ErrNoEngine               = errors.New("no engine registered for codec")
	ErrEngineOpen             = errors.New("engine open failed")
	ErrClosed                 = errors.New("session closed")
	ErrReset                  = errors.New("session reset")
)

// StateError reports an operation attempted in the wrong session state.
// It has no side effects on the session.
type StateError struct {
	Op    string
	State SessionState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("webcodecs: %s not allowed in state %s", e.Op, e.State)
}

// IsStateError reports whether err is a wrong-state rejection.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
