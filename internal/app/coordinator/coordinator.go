// Package coordinator arbitrates audio focus between playback and speech
// recognition: entering recognition quiesces playback and leaving it
// restores playback.
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/notification"
	"github.com/osa030/focusbox/internal/app/permission"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
	"github.com/osa030/focusbox/internal/domain/track"
)

// ResumePolicy decides which exits from recognition resume playback.
type ResumePolicy string

const (
	// ResumeQuiesced resumes only playback the coordinator itself paused.
	ResumeQuiesced ResumePolicy = "quiesced"
	// ResumeAlways issues a resume on every exit from recognition.
	ResumeAlways ResumePolicy = "always"
)

// Config holds coordinator configuration.
type Config struct {
	Track        track.Descriptor    // Track played by ToggleAudio
	Options      recognition.Options // Options for every recognition session
	ResumePolicy ResumePolicy
	SendTimeout  time.Duration // Per-subscriber render feed timeout
}

// consumer applies one session's result events.
type consumer struct {
	sub       *recognition.Subscription
	processed atomic.Int64
	done      chan struct{}
}

func (c *consumer) settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return c.processed.Load() >= c.sub.Delivered()
	}
}

// Coordinator is the single owner of the playback and recognition
// controllers. Intents and result events are applied one at a time.
type Coordinator struct {
	mu sync.Mutex

	// Configuration
	config Config

	// Components
	playback     *playback.Controller
	recognition  *recognition.Controller
	gate         *permission.Gate
	notification *notification.Manager[Snapshot]
	feed         *feed

	// Derived state
	transcript        string
	transcriptSession string // Session allowed to replace the transcript
	quiesced          bool   // Playback was paused on entering recognition

	consumers map[*consumer]struct{}
	closed    bool
}

// New creates a coordinator over the given controllers. Close releases them.
func New(
	pb *playback.Controller,
	rc *recognition.Controller,
	gate *permission.Gate,
	config Config,
) (*Coordinator, error) {
	if pb == nil || rc == nil || gate == nil {
		return nil, errors.New("playback, recognition and permission components are required")
	}
	if config.Track.IsZero() {
		return nil, errors.New("track is required")
	}
	if err := config.Track.Validate(); err != nil {
		return nil, err
	}
	switch config.ResumePolicy {
	case "":
		config.ResumePolicy = ResumeQuiesced
	case ResumeQuiesced, ResumeAlways:
	default:
		return nil, errors.Newf("unsupported resume policy: %s", config.ResumePolicy)
	}

	manager := notification.NewManager[Snapshot](config.SendTimeout)
	return &Coordinator{
		config:       config,
		playback:     pb,
		recognition:  rc,
		gate:         gate,
		notification: manager,
		feed:         newFeed(manager),
		consumers:    make(map[*consumer]struct{}),
	}, nil
}

// Start resolves the recognition permission. It blocks until the platform
// answers; intents issued meanwhile see the checking state.
func (c *Coordinator) Start(ctx context.Context) permission.State {
	state := c.gate.Request(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if state == permission.StateDenied {
		zlog.Warn().Msg(PermissionAdvisory)
	}
	c.publishLocked()
	return state
}

// Snapshot returns the current derived state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a render stream that receives a snapshot after every
// state change. Snapshots are sent in order from a separate goroutine.
func (c *Coordinator) Subscribe(stream notification.Stream[Snapshot]) string {
	return c.notification.Subscribe(stream)
}

// Unsubscribe removes a render stream.
func (c *Coordinator) Unsubscribe(id string) {
	c.notification.Unsubscribe(id)
}

// PlaybackEvents returns the playback controller's event channel. It is
// closed by Close.
func (c *Coordinator) PlaybackEvents() <-chan playback.Event {
	return c.playback.Events()
}

// Dispatch runs the named intent.
func (c *Coordinator) Dispatch(ctx context.Context, intent Intent) Snapshot {
	switch intent {
	case IntentToggleAudio:
		return c.ToggleAudio(ctx)
	case IntentTogglePauseResume:
		return c.TogglePauseResume(ctx)
	case IntentToggleRecognition:
		return c.ToggleRecognition(ctx)
	case IntentStopRecognition:
		return c.StopRecognition(ctx)
	default:
		zlog.Warn().Msgf("ignoring unknown intent: intent=%d", int(intent))
		return c.Snapshot()
	}
}

// ToggleAudio stops the track if it is playing and (re)starts it otherwise.
func (c *Coordinator) ToggleAudio(ctx context.Context) Snapshot {
	return c.run(IntentToggleAudio, func() {
		if c.playback.GetState() == playback.StatePlaying {
			if err := c.playback.Stop(); err != nil {
				zlog.Warn().Err(err).Msg("failed to stop audio")
				return
			}
			c.quiesced = false
			return
		}

		if c.recognition.GetState() == recognition.StateActive {
			zlog.Warn().Msg("audio focus held by recognition, not starting playback")
			return
		}
		if err := c.playback.Play(c.config.Track); err != nil {
			zlog.Warn().Err(err).Msg("failed to play audio")
			return
		}
		c.quiesced = false
	})
}

// TogglePauseResume resumes paused playback or pauses playing playback.
func (c *Coordinator) TogglePauseResume(ctx context.Context) Snapshot {
	return c.run(IntentTogglePauseResume, func() {
		switch c.playback.GetState() {
		case playback.StatePaused:
			if c.recognition.GetState() == recognition.StateActive {
				zlog.Warn().Msg("audio focus held by recognition, not resuming playback")
				return
			}
			if err := c.playback.Resume(); err != nil {
				zlog.Warn().Err(err).Msg("failed to resume audio")
			}
		case playback.StatePlaying:
			if err := c.playback.Pause(); err != nil {
				zlog.Warn().Err(err).Msg("failed to pause audio")
			}
		default:
			zlog.Warn().Msg("no playback to pause")
		}
	})
}

// ToggleRecognition aborts an active session and restores playback, or
// quiesces playback and starts a new session.
func (c *Coordinator) ToggleRecognition(ctx context.Context) Snapshot {
	return c.run(IntentToggleRecognition, func() {
		if c.recognition.GetState() == recognition.StateActive {
			if err := c.recognition.Abort(); err != nil {
				zlog.Warn().Err(err).Msg("failed to abort recognition")
			}
			c.transcriptSession = ""
			c.restorePlaybackLocked()
			return
		}

		if !c.gate.Granted() {
			zlog.Warn().Msgf("microphone permission not granted: permission=%s", c.gate.State())
			return
		}
		if !c.recognition.Available() {
			zlog.Warn().Msg("speech recognition module is not available")
			return
		}

		if !c.quiescePlaybackLocked() {
			return
		}

		sub, err := c.recognition.Start(ctx, permission.StateGranted, c.config.Options)
		if err != nil {
			zlog.Warn().Err(err).Msg("failed to start recognition")
			c.restorePlaybackLocked()
			return
		}

		c.transcript = ""
		c.transcriptSession = sub.SessionID()
		c.consumeLocked(sub)
	})
}

// StopRecognition gracefully ends recognition and restores playback. The
// recognition state is inactive afterwards even if the engine fails.
func (c *Coordinator) StopRecognition(ctx context.Context) Snapshot {
	return c.run(IntentStopRecognition, func() {
		if err := c.recognition.Stop(); err != nil {
			if errors.Is(err, recognition.ErrNotActive) {
				zlog.Debug().Msg("stop recognition with no active session")
			} else {
				zlog.Warn().Err(err).Msg("failed to stop recognition")
			}
		}
		c.restorePlaybackLocked()
	})
}

// Settle blocks until every result event delivered so far has been applied
// and every resulting snapshot has been sent to the render feed.
func (c *Coordinator) Settle(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if c.settled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Coordinator) settled() bool {
	c.mu.Lock()
	consumers := make([]*consumer, 0, len(c.consumers))
	for cons := range c.consumers {
		consumers = append(consumers, cons)
	}
	c.mu.Unlock()

	for _, cons := range consumers {
		if !cons.settled() {
			return false
		}
	}
	return c.feed.idle()
}

// Close aborts recognition, stops playback and drops all render streams.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.recognition.GetState() == recognition.StateActive {
		if err := c.recognition.Abort(); err != nil {
			zlog.Warn().Err(err).Msg("failed to abort recognition on close")
		}
	}
	c.transcriptSession = ""
	consumers := make([]*consumer, 0, len(c.consumers))
	for cons := range c.consumers {
		consumers = append(consumers, cons)
	}
	c.mu.Unlock()

	for _, cons := range consumers {
		<-cons.done
	}
	c.playback.Close()
	c.feed.close()
	c.notification.Close()
	zlog.Info().Msg("coordinator closed")
}

// run applies one intent under the lock. Failures and panics never escape.
func (c *Coordinator) run(intent Intent, fn func()) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		zlog.Warn().Msgf("intent ignored, coordinator closed: intent=%s", intent)
		return c.snapshotLocked()
	}

	before := c.snapshotLocked()
	func() {
		defer func() {
			if r := recover(); r != nil {
				zlog.Error().Msgf("intent panicked: intent=%s panic=%v", intent, r)
			}
		}()
		fn()
	}()

	after := c.snapshotLocked()
	zlog.Info().Msgf("intent handled: intent=%s %s", intent, after)
	if after != before {
		c.feed.publish(after)
	}
	return after
}

// quiescePlaybackLocked pauses playing audio before capture begins. Returns
// false if playback could not be silenced.
func (c *Coordinator) quiescePlaybackLocked() bool {
	if c.playback.GetState() != playback.StatePlaying {
		return true
	}
	if err := c.playback.Pause(); err != nil {
		zlog.Warn().Err(err).Msg("failed to pause audio before recognition, not starting")
		return false
	}
	c.quiesced = true
	return true
}

// restorePlaybackLocked resumes playback after capture ends, per policy.
func (c *Coordinator) restorePlaybackLocked() {
	resume := c.quiesced || c.config.ResumePolicy == ResumeAlways
	c.quiesced = false
	if !resume {
		return
	}
	if err := c.playback.Resume(); err != nil {
		if errors.Is(err, playback.ErrNotPaused) {
			zlog.Debug().Msg("nothing paused to resume")
			return
		}
		zlog.Warn().Err(err).Msg("failed to resume audio after recognition")
	}
}

func (c *Coordinator) consumeLocked(sub *recognition.Subscription) {
	cons := &consumer{sub: sub, done: make(chan struct{})}
	c.consumers[cons] = struct{}{}

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.consumers, cons)
			c.mu.Unlock()
			close(cons.done)
		}()
		for e := range sub.Events() {
			c.applyResult(e)
			cons.processed.Add(1)
		}
	}()
}

// applyResult replaces the transcript with the event's top candidate if the
// event belongs to the session that owns the transcript.
func (c *Coordinator) applyResult(e recognition.ResultEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.SessionID != c.transcriptSession {
		zlog.Debug().Msgf("dropping stale recognition result: session_id=%s", e.SessionID)
		return
	}
	text, ok := e.Top()
	if !ok || text == c.transcript {
		return
	}
	c.transcript = text
	c.publishLocked()
}

func (c *Coordinator) publishLocked() {
	c.feed.publish(c.snapshotLocked())
}

// snapshotLocked reports the loaded track, or the configured one when
// nothing is loaded.
func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		Playback:    c.playback.GetState(),
		Recognition: c.recognition.GetState(),
		Permission:  c.gate.State(),
		Transcript:  c.transcript,
		Track:       c.config.Track,
	}
	if t, ok := c.playback.GetCurrentTrack(); ok {
		s.Track = *t
	}
	return s
}
