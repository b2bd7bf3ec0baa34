package coordinator

import (
	"fmt"

	"github.com/osa030/focusbox/internal/app/permission"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
	"github.com/osa030/focusbox/internal/domain/track"
)

// PermissionAdvisory is shown once recognition access has been refused.
const PermissionAdvisory = "Microphone access blocked. Enable speech recognition permissions in system settings to validate capture events."

// Snapshot is the derived state rendered by the presentation layer.
type Snapshot struct {
	Playback    playback.State
	Recognition recognition.State
	Permission  permission.State
	Transcript  string
	Track       track.Descriptor
}

// RecognitionEnabled reports whether the recognition controls accept input.
func (s Snapshot) RecognitionEnabled() bool {
	return s.Permission == permission.StateGranted
}

// Advisory returns the permission advisory when access was denied.
func (s Snapshot) Advisory() (string, bool) {
	if s.Permission == permission.StateDenied {
		return PermissionAdvisory, true
	}
	return "", false
}

// AudioLabel is the label of the play/stop control.
func (s Snapshot) AudioLabel() string {
	if s.Playback == playback.StatePlaying {
		return "Stop " + s.Track.String()
	}
	return "Play " + s.Track.String()
}

// PauseLabel is the label of the pause/resume control.
func (s Snapshot) PauseLabel() string {
	if s.Playback == playback.StatePaused {
		return "Resume audio"
	}
	return "Pause audio"
}

// RecognitionLabel is the label of the start/abort control.
func (s Snapshot) RecognitionLabel() string {
	if s.Recognition == recognition.StateActive {
		return "Abort recognition"
	}
	return "Start recognition"
}

// String renders the snapshot as a single log-friendly line.
func (s Snapshot) String() string {
	return fmt.Sprintf("playback=%s recognition=%s permission=%s transcript=%q",
		s.Playback, s.Recognition, s.Permission, s.Transcript)
}
