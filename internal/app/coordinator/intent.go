package coordinator

import "github.com/cockroachdb/errors"

// Intent is a user action forwarded by the presentation layer.
type Intent int

const (
	IntentToggleAudio       Intent = iota // Play the track, or stop it if playing
	IntentTogglePauseResume               // Pause if playing, resume if paused
	IntentToggleRecognition               // Start recognition, or abort it if active
	IntentStopRecognition                 // Gracefully stop recognition
)

// AllIntents lists every intent in button order.
var AllIntents = []Intent{
	IntentToggleAudio,
	IntentTogglePauseResume,
	IntentToggleRecognition,
	IntentStopRecognition,
}

// String returns the string representation of the intent.
func (i Intent) String() string {
	switch i {
	case IntentToggleAudio:
		return "toggle_audio"
	case IntentTogglePauseResume:
		return "toggle_pause_resume"
	case IntentToggleRecognition:
		return "toggle_recognition"
	case IntentStopRecognition:
		return "stop_recognition"
	default:
		return "unknown"
	}
}

// Description returns a human-readable description.
func (i Intent) Description() string {
	switch i {
	case IntentToggleAudio:
		return "Play the bundled track, or stop it if playing"
	case IntentTogglePauseResume:
		return "Pause playing audio, or resume paused audio"
	case IntentToggleRecognition:
		return "Start speech recognition (pausing audio), or abort it (resuming audio)"
	case IntentStopRecognition:
		return "Stop speech recognition gracefully and resume audio"
	default:
		return ""
	}
}

// ParseIntent parses the string form produced by String.
func ParseIntent(s string) (Intent, error) {
	for _, i := range AllIntents {
		if i.String() == s {
			return i, nil
		}
	}
	return 0, errors.Newf("unknown intent: %q", s)
}
