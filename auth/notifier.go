package auth

import (
	"sync"

	"github.com/jrsteele09/go-session-client/sessions"
)

// Event is published after a session change has been committed.
type Event struct {
	State   State
	Session sessions.Session
}

// notifier fans events out to subscribers. Each subscriber holds at most one
// pending event; a slow subscriber sees only the latest.
type notifier struct {
	mu          sync.Mutex
	next        uint64
	subscribers map[uint64]chan Event
}

func newNotifier() *notifier {
	return &notifier{subscribers: make(map[uint64]chan Event)}
}

func (n *notifier) subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Event, 1)
	n.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (n *notifier) publish(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- Event{State: e.State, Session: e.Session.Clone()}:
			continue
		default:
		}
		// Replace the stale pending event with this one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- Event{State: e.State, Session: e.Session.Clone()}:
		default:
		}
	}
}
