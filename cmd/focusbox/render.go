package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/osa030/focusbox/internal/app/coordinator"
	"github.com/osa030/focusbox/internal/app/notification"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
)

func formatPlayback(s coordinator.Snapshot) string {
	switch s.Playback {
	case playback.StatePlaying:
		return "▶️  Playing " + s.Track.String()
	case playback.StatePaused:
		return "⏸  Paused " + s.Track.String()
	default:
		return "⏹  Idle"
	}
}

func formatRecognition(s coordinator.Snapshot) string {
	if s.Recognition == recognition.StateActive {
		return "🎙  Listening"
	}
	return "🔇 Not listening"
}

func formatPlaybackEvent(e playback.Event) string {
	line := fmt.Sprintf("playback event: type=%s state=%s", e.Type, e.State)
	if e.Track != nil {
		line += " track=" + e.Track.String()
	}
	return line
}

// newRenderer returns a render stream printing each snapshot to w.
func newRenderer(w io.Writer) notification.StreamFunc[coordinator.Snapshot] {
	var mu sync.Mutex
	return func(seq uint64, s coordinator.Snapshot) error {
		mu.Lock()
		defer mu.Unlock()
		return render(w, seq, s)
	}
}

func render(w io.Writer, seq uint64, s coordinator.Snapshot) error {
	if _, err := fmt.Fprintf(w, "\n[Sequence: %d]\n", seq); err != nil {
		return err
	}
	fmt.Fprintf(w, "  Audio:       %s\n", formatPlayback(s))
	fmt.Fprintf(w, "  Recognition: %s\n", formatRecognition(s))
	fmt.Fprintf(w, "  Permission:  %s\n", s.Permission)
	if s.Transcript != "" {
		fmt.Fprintf(w, "  Transcript:  %q\n", s.Transcript)
	}
	if advisory, ok := s.Advisory(); ok {
		fmt.Fprintf(w, "  ⚠️  %s\n", advisory)
	}

	recognitionLabel := s.RecognitionLabel()
	if !s.RecognitionEnabled() {
		recognitionLabel += " (disabled)"
	}
	_, err := fmt.Fprintf(w, "  Controls:    [%s] [%s] [%s] [Stop recognition]\n",
		s.AudioLabel(), s.PauseLabel(), recognitionLabel)
	return err
}
