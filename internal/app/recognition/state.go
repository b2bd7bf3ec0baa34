// Package recognition wraps a speech-capture engine behind a two-state
// controller with per-session result subscriptions.
package recognition

// State represents the recognition state.
type State int

const (
	StateInactive State = iota // No capture session
	StateActive                // Capture session running
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// ParseState parses the string form produced by String.
func ParseState(s string) (State, bool) {
	switch s {
	case "inactive":
		return StateInactive, true
	case "active":
		return StateActive, true
	default:
		return StateInactive, false
	}
}
