// Package playback wraps a single-track audio engine behind a tri-state controller.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // Nothing loaded or stopped
	StatePlaying              // Track is playing
	StatePaused               // Track is paused and can be resumed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ParseState parses the string form produced by String.
func ParseState(s string) (State, bool) {
	switch s {
	case "idle":
		return StateIdle, true
	case "playing":
		return StatePlaying, true
	case "paused":
		return StatePaused, true
	default:
		return StateIdle, false
	}
}
