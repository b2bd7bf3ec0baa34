package coordinator

import (
	"sync"

	"github.com/osa030/focusbox/internal/app/notification"
)

// feed hands snapshots to the notification manager in publish order from
// its own goroutine, so a slow subscriber never holds the coordinator lock.
type feed struct {
	manager *notification.Manager[Snapshot]

	mu     sync.Mutex
	queue  []Snapshot
	busy   bool
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newFeed(manager *notification.Manager[Snapshot]) *feed {
	f := &feed{
		manager: manager,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// publish queues s without waiting for any subscriber.
func (f *feed) publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.queue = append(f.queue, s)
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *feed) run() {
	defer close(f.done)
	for range f.wake {
		for {
			f.mu.Lock()
			if len(f.queue) == 0 {
				f.busy = false
				f.mu.Unlock()
				break
			}
			s := f.queue[0]
			f.queue = f.queue[1:]
			f.busy = true
			f.mu.Unlock()

			f.manager.Broadcast(s)
		}
	}
}

// idle reports whether every published snapshot has been broadcast.
func (f *feed) idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0 && !f.busy
}

// close broadcasts what is still queued and stops the goroutine.
func (f *feed) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.wake)
	f.mu.Unlock()
	<-f.done
}
