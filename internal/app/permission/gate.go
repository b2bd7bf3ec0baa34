// Package permission resolves and caches microphone/recognition authorization.
package permission

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// ErrDenied is returned by callers that gate on a resolved permission.
var ErrDenied = errors.New("recognition permission not granted")

// State represents the authorization state.
type State int

const (
	StateChecking State = iota // Request not yet answered
	StateGranted               // User granted microphone and recognition access
	StateDenied                // User denied access or the platform failed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// ParseState parses the string form produced by String.
func ParseState(s string) (State, bool) {
	switch s {
	case "checking":
		return StateChecking, true
	case "granted":
		return StateGranted, true
	case "denied":
		return StateDenied, true
	default:
		return StateChecking, false
	}
}

// Authorizer asks the platform for recognition permission.
type Authorizer interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// Gate asks for permission once per lifetime and caches the answer.
type Gate struct {
	authorizer Authorizer

	once  sync.Once
	mu    sync.RWMutex
	state State
}

// NewGate creates a gate in the checking state.
func NewGate(authorizer Authorizer) *Gate {
	return &Gate{
		authorizer: authorizer,
		state:      StateChecking,
	}
}

// Request resolves the permission. Only the first call reaches the authorizer;
// later calls return the cached state. Platform errors resolve to denied.
func (g *Gate) Request(ctx context.Context) State {
	first := false
	g.once.Do(func() {
		first = true
		resolved := g.ask(ctx)

		g.mu.Lock()
		g.state = resolved
		g.mu.Unlock()

		zlog.Info().Msgf("permission resolved: state=%s", resolved)
	})
	if !first {
		zlog.Debug().Msg("permission already resolved, re-request not supported")
	}
	return g.State()
}

func (g *Gate) ask(ctx context.Context) (state State) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Warn().Msgf("failed to request speech recognition permission: panic=%v", r)
			state = StateDenied
		}
	}()

	granted, err := g.authorizer.RequestPermission(ctx)
	if err != nil {
		zlog.Warn().Err(err).Msg("failed to request speech recognition permission")
		return StateDenied
	}
	if !granted {
		return StateDenied
	}
	return StateGranted
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Granted reports whether recognition may run.
func (g *Gate) Granted() bool {
	return g.State() == StateGranted
}
