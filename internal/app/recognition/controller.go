package recognition

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/permission"
)

// Errors
var (
	ErrPermissionDenied      = errors.Wrap(permission.ErrDenied, "cannot start recognition")
	ErrCapabilityUnavailable = errors.New("speech recognition is not available on this device")
	ErrAlreadyActive         = errors.New("recognition already active")
	ErrNotActive             = errors.New("recognition not active")
)

// Engine is the native speech recognition module.
type Engine interface {
	permission.Authorizer

	// IsAvailable reports whether the device can run recognition at all.
	IsAvailable() bool
	Start(ctx context.Context, opts Options) error
	// Stop ends capture gracefully; pending partial results are flushed
	// through the result handler before it returns.
	Stop() error
	// Abort ends capture immediately, discarding in-flight recognition.
	Abort() error
	// OnResult registers a result handler and returns its cancel function.
	OnResult(handler func(ResultEvent)) (cancel func())
}

// Config holds controller configuration.
type Config struct {
	FeedBuffer int // Per-session result buffer
}

// Controller tracks one engine's capture session.
type Controller struct {
	mu sync.Mutex

	engine Engine
	config Config

	state        State
	current      *Subscription
	cancelResult func()
}

// NewController creates a new recognition controller in the inactive state.
func NewController(engine Engine, config Config) *Controller {
	return &Controller{
		engine: engine,
		config: config,
		state:  StateInactive,
	}
}

// Start begins a capture session. Permission must be granted and the
// capability available; otherwise the call is a logged no-op.
func (c *Controller) Start(ctx context.Context, perm permission.State, opts Options) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateActive {
		zlog.Debug().Msg("recognition: start ignored, already active")
		return nil, ErrAlreadyActive
	}
	if perm != permission.StateGranted {
		zlog.Warn().Msgf("recognition: microphone permission not granted: permission=%s", perm)
		return nil, ErrPermissionDenied
	}
	if !c.available() {
		zlog.Warn().Msg("recognition: speech recognition module is not available")
		return nil, ErrCapabilityUnavailable
	}

	sub := newSubscription(uuid.New().String(), c.config.FeedBuffer)
	cancelResult := c.engine.OnResult(sub.deliver)

	if err := c.callEngine("start", func() error { return c.engine.Start(ctx, opts) }); err != nil {
		cancelResult()
		sub.close(true)
		zlog.Warn().Err(err).Msgf("recognition: failed to start: lang=%s", opts.Lang)
		return nil, errors.Wrap(err, "failed to start recognition")
	}

	c.current = sub
	c.cancelResult = cancelResult
	c.state = StateActive
	zlog.Info().Msgf("recognition: session started: session_id=%s lang=%s interim=%t continuous=%t on_device=%t",
		sub.SessionID(), opts.Lang, opts.InterimResults, opts.Continuous, opts.RequiresOnDeviceRecognition)

	return sub, nil
}

// Stop ends the session gracefully. Results flushed by the engine during
// stop still reach the subscription. The controller is inactive afterwards
// even when the engine fails.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		zlog.Debug().Msg("recognition: stop ignored, not active")
		return ErrNotActive
	}

	err := c.callEngine("stop", c.engine.Stop)
	c.endLocked(false)
	if err != nil {
		zlog.Warn().Err(err).Msg("recognition: engine stop failed, session closed anyway")
		return errors.Wrap(err, "failed to stop recognition")
	}
	return nil
}

// Abort ends the session immediately. The result handler is detached before
// the engine is told to abort, so no trailing result is delivered.
func (c *Controller) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		zlog.Debug().Msg("recognition: abort ignored, not active")
		return ErrNotActive
	}

	c.detachLocked()
	err := c.callEngine("abort", c.engine.Abort)
	c.endLocked(true)
	if err != nil {
		zlog.Warn().Err(err).Msg("recognition: engine abort failed, session closed anyway")
		return errors.Wrap(err, "failed to abort recognition")
	}
	return nil
}

// GetState returns the current recognition state.
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Available reports whether the engine can run recognition.
func (c *Controller) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available()
}

func (c *Controller) available() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Warn().Msgf("recognition: availability check panicked: %v", r)
			ok = false
		}
	}()
	return c.engine.IsAvailable()
}

func (c *Controller) detachLocked() {
	if c.cancelResult != nil {
		c.cancelResult()
		c.cancelResult = nil
	}
}

func (c *Controller) endLocked(discard bool) {
	c.detachLocked()
	if c.current != nil {
		zlog.Info().Msgf("recognition: session ended: session_id=%s aborted=%t dropped=%d",
			c.current.SessionID(), discard, c.current.Dropped())
		c.current.close(discard)
		c.current = nil
	}
	c.state = StateInactive
}

// callEngine runs an engine command, converting a panic into an error.
func (c *Controller) callEngine(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("recognition engine panicked during %s: %v", op, r)
		}
	}()
	return fn()
}
