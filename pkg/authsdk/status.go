package authsdk

import (
	"fmt"
	"sync"
)

// StatusKind enumerates session status transitions.
type StatusKind int

const (
	StatusInitializing StatusKind = iota
	StatusAuthenticated
	StatusNotAuthenticated
	StatusRefreshFailure
)

func (k StatusKind) String() string {
	switch k {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusNotAuthenticated:
		return "not_authenticated"
	case StatusRefreshFailure:
		return "refresh_failure"
	default:
		return fmt.Sprintf("status(%d)", int(k))
	}
}

// Status is one value of the session status stream. Session is set for
// Authenticated, Cause for RefreshFailure.
type Status struct {
	Kind    StatusKind
	Session *Session
	Cause   error
}

const subscriberBuffer = 8

// statusHub fans statuses out to subscribers and replays the latest one to
// each new subscriber.
type statusHub struct {
	mu      sync.Mutex
	current Status
	subs    map[int]chan Status
	nextID  int
	closed  bool
}

func newStatusHub() *statusHub {
	return &statusHub{
		current: Status{Kind: StatusInitializing},
		subs:    make(map[int]chan Status),
	}
}

func (h *statusHub) latest() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *statusHub) subscribe() (<-chan Status, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Status, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	ch <- h.current

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (h *statusHub) publish(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.current = s
	for _, ch := range h.subs {
		deliver(ch, s)
	}
}

// deliver never blocks: when the buffer is full the oldest pending status is
// dropped to make room. Callers hold the hub lock so no other sender races.
func deliver(ch chan Status, s Status) {
	select {
	case ch <- s:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- s:
	default:
	}
}

func (h *statusHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
