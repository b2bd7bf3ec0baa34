package recognition

import (
	"sync"
	"sync/atomic"
)

// Subscription delivers the result events of exactly one capture session.
// The channel is closed when the session ends.
type Subscription struct {
	sessionID string
	events    chan ResultEvent

	mu        sync.Mutex
	closed    bool
	delivered atomic.Int64
	dropped   atomic.Int32
}

func newSubscription(sessionID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	return &Subscription{
		sessionID: sessionID,
		events:    make(chan ResultEvent, buffer),
	}
}

// SessionID returns the capture session this subscription belongs to.
func (s *Subscription) SessionID() string {
	return s.sessionID
}

// Events returns the result channel.
func (s *Subscription) Events() <-chan ResultEvent {
	return s.events
}

// Dropped returns how many events were evicted because the buffer was full.
func (s *Subscription) Dropped() int {
	return int(s.dropped.Load())
}

// Delivered returns how many buffered events are still owed to the reader
// or were already read. Evicted events are not counted.
func (s *Subscription) Delivered() int64 {
	return s.delivered.Load()
}

// deliver sends without blocking the engine callback. Each event supersedes
// the previous one, so a full buffer evicts its oldest event and the newest
// is always kept.
func (s *Subscription) deliver(e ResultEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	e.SessionID = s.sessionID
	for {
		select {
		case s.events <- e:
			s.delivered.Add(1)
			return
		default:
		}
		select {
		case <-s.events:
			s.delivered.Add(-1)
			s.dropped.Add(1)
		default:
			// Reader just made room
		}
	}
}

// close ends the subscription. With discard set, buffered events are
// drained first so no in-flight result survives an abort.
func (s *Subscription) close(discard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if discard {
	drain:
		for {
			select {
			case <-s.events:
			default:
				break drain
			}
		}
	}
	close(s.events)
}
