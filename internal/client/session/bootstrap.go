// Package session decides where the client starts and observes the
// backend's session status for the process lifetime.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/store"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// ErrStreamClosed is returned when the status stream ends before the backend
// finished initializing.
var ErrStreamClosed = errors.New("session: status stream closed")

// StartState is what the navigator observes while the client boots. The
// destination is meaningful only once IsLoading is false.
type StartState struct {
	IsLoading        bool
	StartDestination domain.Screen
}

// Bootstrapper computes the start destination once per process.
type Bootstrapper struct {
	Sessions domain.SessionSource
	Flags    store.Flags
	Logger   *slog.Logger

	runMu sync.Mutex

	mu    sync.Mutex
	state StartState
	ready chan struct{}
}

func NewBootstrapper(sessions domain.SessionSource, flags store.Flags, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		Sessions: sessions,
		Flags:    flags,
		Logger:   slogx.OrDefault(logger).With("component", "bootstrap"),
		state:    StartState{IsLoading: true, StartDestination: domain.ScreenLogin},
		ready:    make(chan struct{}),
	}
}

// State returns the current start state.
func (b *Bootstrapper) State() StartState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Ready is closed once the start destination has been published.
func (b *Bootstrapper) Ready() <-chan struct{} {
	return b.ready
}

// Run waits for the backend to restore its session, reconciles the pending
// reset flag and publishes the start destination. Later calls return the
// published destination without doing anything. If ctx ends first nothing is
// published and Run may be called again.
func (b *Bootstrapper) Run(ctx context.Context) (domain.Screen, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if st := b.State(); !st.IsLoading {
		return st.StartDestination, nil
	}

	if _, err := AwaitInitialized(ctx, b.Sessions); err != nil {
		return "", err
	}

	dest := b.reconcile(ctx)

	b.mu.Lock()
	b.state = StartState{IsLoading: false, StartDestination: dest}
	b.mu.Unlock()
	close(b.ready)
	b.Logger.Info("start destination decided", "destination", dest)

	return dest, nil
}

// reconcile applies the pending reset flag and picks the destination.
func (b *Bootstrapper) reconcile(ctx context.Context) domain.Screen {
	pending, err := b.Flags.Flag(ctx, domain.PendingResetFlag)
	if err != nil {
		b.Logger.Error("failed to read pending reset flag, assuming set", "error", err)
		pending = true
	}

	signOutFailed := false
	if pending {
		// A reset that never reached the new password leaves a recovery
		// session behind; it must not land on Home.
		if err := b.Sessions.SignOut(ctx); err != nil {
			b.Logger.Error("forced sign-out failed", "error", err)
			signOutFailed = true
		}
	}

	if err := b.Flags.ClearFlag(ctx, domain.PendingResetFlag); err != nil {
		b.Logger.Error("failed to clear pending reset flag", "error", err)
	}
	b.Logger.Debug("pending reset flag reconciled", "pending", pending)

	if signOutFailed || b.Sessions.CurrentSession() == nil {
		return domain.ScreenLogin
	}
	return domain.ScreenHome
}

// AwaitInitialized blocks until the status stream yields anything other than
// Initializing and returns that status.
func AwaitInitialized(ctx context.Context, sessions domain.SessionSource) (domain.SessionStatus, error) {
	statuses, cancel := sessions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return domain.SessionStatus{}, ctx.Err()
		case st, ok := <-statuses:
			if !ok {
				return domain.SessionStatus{}, ErrStreamClosed
			}
			if st.Kind != domain.StatusInitializing {
				return st, nil
			}
		}
	}
}
