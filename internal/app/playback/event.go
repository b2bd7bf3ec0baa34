package playback

import "github.com/osa030/focusbox/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // Track (re)started from the beginning
	EventStopped                       // Playback stopped, controller is idle
	EventStateChanged                  // Playback state changed (pause/resume)
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStopped:
		return "stopped"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Descriptor // Loaded track (nil after stop)
	State State             // Playback state after the transition
}
