package simulated

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/domain/track"
)

// ErrNothingLoaded is returned by transport commands with no track loaded.
var ErrNothingLoaded = errors.New("no track loaded")

// Playback is a simulated single-track audio engine.
type Playback struct {
	mu     sync.Mutex
	faults faults
	loaded *track.Descriptor
	paused bool
	calls  []string
}

// NewPlayback creates a simulated audio engine.
func NewPlayback(settings PlaybackSettings) *Playback {
	return &Playback{faults: faults{failOn: settings.FailOn, panicOn: settings.PanicOn}}
}

// Play loads and starts t from the beginning.
func (p *Playback) Play(t track.Descriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "play")
	if err := p.faults.check("play"); err != nil {
		return err
	}
	p.loaded = &t
	p.paused = false
	zlog.Debug().Msgf("simulated audio: playing %s from %s", t, t.URL)
	return nil
}

// Stop unloads the track.
func (p *Playback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "stop")
	if err := p.faults.check("stop"); err != nil {
		return err
	}
	if p.loaded == nil {
		return ErrNothingLoaded
	}
	p.loaded = nil
	p.paused = false
	return nil
}

// Pause pauses the loaded track.
func (p *Playback) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "pause")
	if err := p.faults.check("pause"); err != nil {
		return err
	}
	if p.loaded == nil {
		return ErrNothingLoaded
	}
	p.paused = true
	return nil
}

// Resume resumes the loaded track.
func (p *Playback) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "resume")
	if err := p.faults.check("resume"); err != nil {
		return err
	}
	if p.loaded == nil {
		return ErrNothingLoaded
	}
	p.paused = false
	return nil
}

// Audible reports whether sound would currently be coming out.
func (p *Playback) Audible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded != nil && !p.paused
}

// Calls returns the commands received so far.
func (p *Playback) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}
