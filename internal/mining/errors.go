package mining

import (
	"errors"
	"fmt"
)

// ErrNotMining is returned when an activity is recorded for an account whose
// session is not in the mining state.
var ErrNotMining = errors.New("mining is not active")

// ErrUnknownActivity is returned for activity types outside the limit table.
var ErrUnknownActivity = errors.New("unknown activity type")

// StartError reports a failed attempt to start a mining session. The session
// remains stopped.
type StartError struct {
	Account string
	Err     error
}

// Error implements the error interface
func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start mining for %s: %v", e.Account, e.Err)
}

// Unwrap returns the underlying store error
func (e *StartError) Unwrap() error {
	return e.Err
}
