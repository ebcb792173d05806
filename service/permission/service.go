package permission

import (
	"fmt"

	"github.com/elC0mpa/cost-doctor/service"
)

// NewGate returns a gate in the checking state
func NewGate() *Gate {
	return &Gate{state: StateChecking}
}

// Begin enters checking for a new submission
func (g *Gate) Begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateChecking
	g.environments = nil
	g.message = ""
}

// Succeed records a successful response
func (g *Gate) Succeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateReady
	g.environments = nil
	g.message = ""
}

// Fail routes a failed submission: access denied goes to needsSetup, anything else to error
func (g *Gate) Fail(err error) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if denied, ok := service.AsAccessDenied(err); ok {
		g.state = StateNeedsSetup
		g.environments = append([]string(nil), denied.Environments...)
		g.message = fmt.Sprintf("%d environment(s) need cost access setup", len(denied.Environments))
		return g.state
	}

	g.state = StateError
	g.environments = nil
	g.message = GenericErrorMessage
	return g.state
}

// RequireSetup narrows or replaces the environments still needing setup
func (g *Gate) RequireSetup(environments []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateNeedsSetup
	g.environments = append([]string(nil), environments...)
	g.message = fmt.Sprintf("%d environment(s) need cost access setup", len(environments))
}

// Recheck moves from needsSetup to ready without re-running the query
func (g *Gate) Recheck() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateNeedsSetup {
		return fmt.Errorf("%w: recheck from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateReady
	g.environments = nil
	g.message = ""
	return nil
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Environments returns the environments needing setup
func (g *Gate) Environments() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.environments...)
}

// Message returns the operator-facing status text
func (g *Gate) Message() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.message
}

// CanSubmit reports whether a query may run; setup has to be completed and rechecked first
func (g *Gate) CanSubmit() bool {
	return g.State() != StateNeedsSetup
}
