package recognition

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/focusbox/internal/app/permission"
)

// Mock Engine for testing
type mockEngine struct {
	mu          sync.Mutex
	unavailable bool
	failOn      map[string]bool
	flushOnStop string
	handler     func(ResultEvent)
	lastOptions Options
}

func newMockEngine() *mockEngine {
	return &mockEngine{failOn: make(map[string]bool)}
}

func (m *mockEngine) RequestPermission(ctx context.Context) (bool, error) { return true, nil }
func (m *mockEngine) IsAvailable() bool                                  { return !m.unavailable }

func (m *mockEngine) Start(ctx context.Context, opts Options) error {
	m.lastOptions = opts
	if m.failOn["start"] {
		return errors.New("engine start failed")
	}
	return nil
}

func (m *mockEngine) Stop() error {
	if m.flushOnStop != "" {
		m.emit(m.flushOnStop)
	}
	if m.failOn["stop"] {
		return errors.New("engine stop failed")
	}
	return nil
}

func (m *mockEngine) Abort() error {
	// A late result racing the abort must not reach the session.
	m.emit("late partial")
	if m.failOn["abort"] {
		return errors.New("engine abort failed")
	}
	return nil
}

func (m *mockEngine) OnResult(handler func(ResultEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handler = nil
	}
}

func (m *mockEngine) emit(candidates ...string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(NewResultEvent(candidates...))
	}
}

var testOptions = Options{Lang: "en-US", InterimResults: true, Continuous: true}

func collect(sub *Subscription) []string {
	var out []string
	for e := range sub.Events() {
		if text, ok := e.Top(); ok {
			out = append(out, text)
		}
	}
	return out
}

func TestController_StartPreconditions(t *testing.T) {
	tests := []struct {
		name        string
		perm        permission.State
		unavailable bool
		failStart   bool
		wantErr     error
	}{
		{name: "granted and available", perm: permission.StateGranted},
		{name: "permission denied", perm: permission.StateDenied, wantErr: ErrPermissionDenied},
		{name: "permission still checking", perm: permission.StateChecking, wantErr: ErrPermissionDenied},
		{name: "capability unavailable", perm: permission.StateGranted, unavailable: true, wantErr: ErrCapabilityUnavailable},
		{name: "engine start fails", perm: permission.StateGranted, failStart: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			engine.unavailable = tt.unavailable
			engine.failOn["start"] = tt.failStart
			c := NewController(engine, Config{})

			sub, err := c.Start(context.Background(), tt.perm, testOptions)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sub)
				assert.Equal(t, StateInactive, c.GetState())
			case tt.failStart:
				assert.Error(t, err)
				assert.Nil(t, sub)
				assert.Equal(t, StateInactive, c.GetState())
			default:
				require.NoError(t, err)
				require.NotNil(t, sub)
				assert.NotEmpty(t, sub.SessionID())
				assert.Equal(t, StateActive, c.GetState())
				assert.Equal(t, testOptions, engine.lastOptions)
			}
		})
	}
}

func TestController_PermissionDeniedMatchesGateError(t *testing.T) {
	c := NewController(newMockEngine(), Config{})
	_, err := c.Start(context.Background(), permission.StateDenied, testOptions)
	assert.ErrorIs(t, err, permission.ErrDenied)
}

func TestController_StartTwice(t *testing.T) {
	c := NewController(newMockEngine(), Config{})
	_, err := c.Start(context.Background(), permission.StateGranted, testOptions)
	require.NoError(t, err)

	_, err = c.Start(context.Background(), permission.StateGranted, testOptions)
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, StateActive, c.GetState())
}

func TestController_StopFlushesTrailingResult(t *testing.T) {
	engine := newMockEngine()
	engine.flushOnStop = "hello world"
	c := NewController(engine, Config{})

	sub, err := c.Start(context.Background(), permission.StateGranted, testOptions)
	require.NoError(t, err)
	engine.emit("hello")

	require.NoError(t, c.Stop())

	assert.Equal(t, StateInactive, c.GetState())
	assert.Equal(t, []string{"hello", "hello world"}, collect(sub))
}

func TestController_AbortDiscardsInFlight(t *testing.T) {
	engine := newMockEngine()
	c := NewController(engine, Config{})

	sub, err := c.Start(context.Background(), permission.StateGranted, testOptions)
	require.NoError(t, err)
	engine.emit("hel")

	require.NoError(t, c.Abort())

	assert.Equal(t, StateInactive, c.GetState())
	assert.Empty(t, collect(sub))
}

func TestController_EngineFailureStillEndsSession(t *testing.T) {
	for _, op := range []string{"stop", "abort"} {
		t.Run(op, func(t *testing.T) {
			engine := newMockEngine()
			c := NewController(engine, Config{})
			sub, err := c.Start(context.Background(), permission.StateGranted, testOptions)
			require.NoError(t, err)
			engine.failOn[op] = true

			if op == "stop" {
				err = c.Stop()
			} else {
				err = c.Abort()
			}

			assert.Error(t, err)
			assert.Equal(t, StateInactive, c.GetState())
			_, open := <-sub.Events()
			assert.False(t, open)
		})
	}
}

func TestController_StopWhenInactive(t *testing.T) {
	c := NewController(newMockEngine(), Config{})
	assert.ErrorIs(t, c.Stop(), ErrNotActive)
	assert.ErrorIs(t, c.Abort(), ErrNotActive)
	assert.Equal(t, StateInactive, c.GetState())
}

func TestController_NoLeakAcrossSessions(t *testing.T) {
	engine := newMockEngine()
	c := NewController(engine, Config{})

	first, err := c.Start(context.Background(), permission.StateGranted, testOptions)
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	second, err := c.Start(context.Background(), permission.StateGranted, testOptions)
	require.NoError(t, err)
	engine.emit("second session")
	require.NoError(t, c.Stop())

	assert.NotEqual(t, first.SessionID(), second.SessionID())
	assert.Empty(t, collect(first))

	var sessions []string
	for e := range second.Events() {
		sessions = append(sessions, e.SessionID)
	}
	assert.Equal(t, []string{second.SessionID()}, sessions)
}

func TestSubscription_KeepsLatestWhenFull(t *testing.T) {
	tests := []struct {
		name     string
		emitted  []string
		expected []string
		dropped  int
	}{
		{name: "fits", emitted: []string{"a", "b"}, expected: []string{"a", "b"}, dropped: 0},
		{name: "one over", emitted: []string{"a", "b", "c"}, expected: []string{"b", "c"}, dropped: 1},
		{name: "many over", emitted: []string{"a", "b", "c", "d", "e"}, expected: []string{"d", "e"}, dropped: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			c := NewController(engine, Config{FeedBuffer: 2})

			sub, err := c.Start(context.Background(), permission.StateGranted, testOptions)
			require.NoError(t, err)
			for _, text := range tt.emitted {
				engine.emit(text)
			}
			assert.Equal(t, int64(len(tt.expected)), sub.Delivered(), "evicted events are not owed to the reader")
			require.NoError(t, c.Stop())

			assert.Equal(t, tt.expected, collect(sub))
			assert.Equal(t, tt.dropped, sub.Dropped())
		})
	}
}

func TestResultEvent_Top(t *testing.T) {
	tests := []struct {
		name     string
		event    ResultEvent
		expected string
		ok       bool
	}{
		{name: "first candidate wins", event: NewResultEvent("hello", "yellow"), expected: "hello", ok: true},
		{name: "no results", event: ResultEvent{}, ok: false},
		{name: "empty top candidate", event: NewResultEvent("", "hello"), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := tt.event.Top()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, text)
		})
	}
}
