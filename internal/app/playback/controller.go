package playback

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/domain/track"
)

// Errors
var (
	ErrNotPlaying = errors.New("not playing")
	ErrNotPaused  = errors.New("not paused")
	ErrClosed     = errors.New("playback controller closed")
)

// Engine is the native audio engine the controller drives.
// Implementations may fail or panic; the controller contains both.
type Engine interface {
	Play(t track.Descriptor) error
	Stop() error
	Pause() error
	Resume() error
}

// Config holds controller configuration.
type Config struct {
	EventBuffer int // Capacity of the event channel
}

// Controller owns one audio engine and tracks its tri-state status.
type Controller struct {
	mu sync.RWMutex

	engine Engine

	// Current track state
	currentTrack *track.Descriptor
	state        State
	closed       bool

	// Events
	eventCh chan Event

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new playback controller in the idle state.
func NewController(engine Engine, config Config) *Controller {
	if config.EventBuffer <= 0 {
		config.EventBuffer = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		engine:  engine,
		state:   StateIdle,
		eventCh: make(chan Event, config.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Play (re)starts the given track from any state.
func (c *Controller) Play(t track.Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if err := c.callEngine("play", func() error { return c.engine.Play(t) }); err != nil {
		zlog.Warn().Err(err).Msgf("playback: failed to play: track=%s state=%s", t, c.state)
		return errors.Wrapf(err, "failed to play %s", t)
	}

	c.currentTrack = &t
	c.state = StatePlaying
	zlog.Debug().Msgf("playback: track started: track=%s", t)

	c.sendEventLocked(Event{
		Type:  EventTrackStarted,
		Track: c.currentTrack,
		State: c.state,
	})
	return nil
}

// Stop stops playback from any state. An engine error while nothing is
// loaded is swallowed.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	if err := c.callEngine("stop", c.engine.Stop); err != nil {
		if c.state == StateIdle {
			zlog.Debug().Msgf("playback: stop with nothing loaded: %v", err)
			return nil
		}
		zlog.Warn().Err(err).Msgf("playback: failed to stop: state=%s", c.state)
		return errors.Wrap(err, "failed to stop playback")
	}

	wasIdle := c.state == StateIdle
	c.currentTrack = nil
	c.state = StateIdle

	if !wasIdle {
		c.sendEventLocked(Event{
			Type:  EventStopped,
			State: c.state,
		})
	}
	return nil
}

// Pause pauses the current playback. Returns ErrNotPlaying without touching
// the engine unless playing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		zlog.Debug().Msgf("playback: pause ignored: state=%s", c.state)
		return ErrNotPlaying
	}

	if err := c.callEngine("pause", c.engine.Pause); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to pause")
		return errors.Wrap(err, "failed to pause playback")
	}

	c.state = StatePaused
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Track: c.currentTrack,
		State: c.state,
	})
	return nil
}

// Resume resumes paused playback. Returns ErrNotPaused without touching the
// engine unless paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		zlog.Debug().Msgf("playback: resume ignored: state=%s", c.state)
		return ErrNotPaused
	}

	if err := c.callEngine("resume", c.engine.Resume); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to resume")
		return errors.Wrap(err, "failed to resume playback")
	}

	c.state = StatePlaying
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Track: c.currentTrack,
		State: c.state,
	})
	return nil
}

// GetState returns the current playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetCurrentTrack returns the loaded track.
func (c *Controller) GetCurrentTrack() (*track.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.currentTrack == nil {
		return nil, false
	}
	t := *c.currentTrack
	return &t, true
}

// Close stops playback and closes the event channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	_ = c.stopLocked()
	c.closed = true
	c.cancel()
	close(c.eventCh)
}

// callEngine runs an engine command, converting a panic into an error so
// the caller's state is never left half-updated.
func (c *Controller) callEngine(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("playback engine panicked during %s: %v", op, r)
		}
	}()
	return fn()
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
		// Successfully sent
	case <-c.ctx.Done():
		// Context cancelled, don't send
	default:
		zlog.Debug().Msgf("playback: event dropped, channel full: type=%s", e.Type)
	}
}
