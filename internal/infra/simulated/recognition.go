package simulated

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/recognition"
)

// Recognition is a simulated speech engine. Results are injected with Emit.
type Recognition struct {
	mu        sync.Mutex
	settings  RecognitionSettings
	faults    faults
	listening bool
	options   recognition.Options
	handlers  map[int]func(recognition.ResultEvent)
	nextID    int
}

// NewRecognition creates a simulated speech engine.
func NewRecognition(settings RecognitionSettings) *Recognition {
	return &Recognition{
		settings: settings,
		faults:   faults{failOn: settings.FailOn, panicOn: settings.PanicOn},
		handlers: make(map[int]func(recognition.ResultEvent)),
	}
}

// RequestPermission answers with the configured permission.
func (r *Recognition) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	switch r.settings.Permission {
	case "granted":
		return true, nil
	case "denied":
		return false, nil
	default:
		return false, errors.New("simulated permission service failure")
	}
}

// IsAvailable reports the configured capability.
func (r *Recognition) IsAvailable() bool {
	return r.settings.Available
}

// Start begins listening.
func (r *Recognition) Start(ctx context.Context, opts recognition.Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.faults.check("start"); err != nil {
		return err
	}
	r.listening = true
	r.options = opts
	return nil
}

// Stop ends listening, flushing the configured final result first.
func (r *Recognition) Stop() error {
	r.mu.Lock()
	flush := r.listening && r.settings.FlushOnStop != ""
	r.mu.Unlock()

	if flush {
		r.Emit(r.settings.FlushOnStop)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.listening = false
	return r.faults.check("stop")
}

// Abort ends listening without flushing.
func (r *Recognition) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listening = false
	return r.faults.check("abort")
}

// OnResult registers a result handler.
func (r *Recognition) OnResult(handler func(recognition.ResultEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.handlers[id] = handler
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers, id)
	}
}

// Emit pushes one result event with the given ranked candidates. Returns
// false if the engine is not listening.
func (r *Recognition) Emit(candidates ...string) bool {
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		zlog.Debug().Msgf("simulated speech: not listening, dropping %q", candidates)
		return false
	}
	handlers := make([]func(recognition.ResultEvent), 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	event := recognition.NewResultEvent(candidates...)
	for _, h := range handlers {
		h(event)
	}
	return true
}

// Listening reports whether capture is running.
func (r *Recognition) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

// Options returns the options of the last started session.
func (r *Recognition) Options() recognition.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}
