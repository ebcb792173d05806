package permission

import (
	"errors"
	"sync"
)

// State is the readiness of a cost query
type State string

const (
	StateChecking   State = "checking"
	StateNeedsSetup State = "needsSetup"
	StateReady      State = "ready"
	StateError      State = "error"
)

// GenericErrorMessage is the only detail surfaced for transient failures
const GenericErrorMessage = "Failed to load cost data. Please try again."

// ErrInvalidTransition is returned when an action is not allowed from the current state
var ErrInvalidTransition = errors.New("invalid permission state transition")

// Gate decides whether a query may run or whether setup is required first.
// Every transition is operator initiated; nothing retries on its own.
type Gate struct {
	mu           sync.RWMutex
	state        State
	environments []string
	message      string
}
