package session

import (
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// Listener turns every session status transition into a notification for
// the lifetime of the process. It never changes state elsewhere.
type Listener struct {
	Sessions domain.SessionSource
	Logger   *slog.Logger

	// OnNotify, when set, is called from the listener goroutine for each
	// notification.
	OnNotify func(string)

	mu     sync.Mutex
	latest string

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    func()
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewListener(sessions domain.SessionSource, logger *slog.Logger) *Listener {
	return &Listener{
		Sessions: sessions,
		Logger:   slogx.OrDefault(logger).With("component", "session_listener"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start subscribes before returning so no transition after Start is missed.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		statuses, cancel := l.Sessions.Subscribe()
		l.cancel = cancel
		go l.run(statuses)
	})
}

// Stop ends the subscription and waits for the worker to exit.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		started := true
		l.startOnce.Do(func() { started = false })
		if !started {
			return
		}
		close(l.stopCh)
		l.cancel()
		<-l.doneCh
	})
}

// Latest returns the most recent notification, or "" before the first one.
func (l *Listener) Latest() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

func (l *Listener) run(statuses <-chan domain.SessionStatus) {
	defer close(l.doneCh)

	for {
		select {
		case <-l.stopCh:
			return
		case st, ok := <-statuses:
			if !ok {
				return
			}
			l.handle(st)
		}
	}
}

func (l *Listener) handle(st domain.SessionStatus) {
	msg := st.Notification()

	attrs := []any{"status", msg}
	if st.Session != nil {
		attrs = append(attrs, "user_id", st.Session.UserID)
	}
	l.Logger.Debug("session status changed", attrs...)

	l.mu.Lock()
	l.latest = msg
	l.mu.Unlock()

	if l.OnNotify != nil {
		l.OnNotify(msg)
	}
}
