// Package clienttest provides in-memory doubles of the client ports for tests.
package clienttest

import (
	"context"
	"slices"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
)

// Backend is a scriptable domain.Backend. Set the *Err fields to make the
// matching call fail. When Gate is non-nil every call blocks until Gate is
// closed or the call's context ends.
type Backend struct {
	Gate chan struct{}

	LookupErr  error
	SignInErr  error
	IDTokenErr error
	SignUpErr  error
	VerifyErr  error
	ResetErr   error
	ResendErr  error
	UpdateErr  error
	SignOutErr error
	UserErr    error
	User       domain.User

	mu        sync.Mutex
	directory map[string]string
	calls     []string
	session   *domain.Session
	current   domain.SessionStatus
	subs      map[int]chan domain.SessionStatus
	nextSub   int

	LastNonce    string
	LastIDToken  string
	LastPurpose  domain.OTPPurpose
	LastMetadata map[string]any
	LastPassword string
}

func NewBackend() *Backend {
	return &Backend{
		directory: make(map[string]string),
		subs:      make(map[int]chan domain.SessionStatus),
		current:   domain.SessionStatus{Kind: domain.StatusInitializing},
	}
}

// AddUser registers email in the directory under provider.
func (b *Backend) AddUser(email, provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.directory[email] = provider
}

// SetSession installs s without publishing anything.
func (b *Backend) SetSession(s *domain.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = s
}

// Calls returns the names of the calls made so far.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// Called reports whether name was called.
func (b *Backend) Called(name string) bool {
	return slices.Contains(b.Calls(), name)
}

// Publish sends st to every subscriber and makes it the replayed status.
func (b *Backend) Publish(st domain.SessionStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishLocked(st)
}

func (b *Backend) publishLocked(st domain.SessionStatus) {
	b.current = st
	for _, ch := range b.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Backend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Backend) enter(ctx context.Context, name string) error {
	b.mu.Lock()
	b.calls = append(b.calls, name)
	gate := b.Gate
	b.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) signIn(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = &domain.Session{AccessToken: "access", RefreshToken: "refresh", UserID: "user-1", Email: email}
	s := *b.session
	b.publishLocked(domain.SessionStatus{Kind: domain.StatusAuthenticated, Session: &s})
}

func (b *Backend) UserExists(ctx context.Context, email, provider string) (bool, error) {
	if err := b.enter(ctx, "UserExists"); err != nil {
		return false, err
	}
	if b.LookupErr != nil {
		return false, b.LookupErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.directory[email]
	return ok && (provider == "" || p == provider), nil
}

func (b *Backend) CurrentSession() *domain.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	s := *b.session
	return &s
}

func (b *Backend) Subscribe() (<-chan domain.SessionStatus, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan domain.SessionStatus, 16)
	ch <- b.current
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// SignOut clears the session unless SignOutErr is set.
func (b *Backend) SignOut(ctx context.Context) error {
	if err := b.enter(ctx, "SignOut"); err != nil {
		return err
	}
	if b.SignOutErr != nil {
		return b.SignOutErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = nil
	b.publishLocked(domain.SessionStatus{Kind: domain.StatusNotAuthenticated})
	return nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) error {
	if err := b.enter(ctx, "SignInWithPassword"); err != nil {
		return err
	}
	if b.SignInErr != nil {
		return b.SignInErr
	}
	b.signIn(email)
	return nil
}

func (b *Backend) SignInWithIDToken(ctx context.Context, provider, idToken, rawNonce string) error {
	if err := b.enter(ctx, "SignInWithIDToken"); err != nil {
		return err
	}

	b.mu.Lock()
	b.LastIDToken = idToken
	b.LastNonce = rawNonce
	b.mu.Unlock()

	if b.IDTokenErr != nil {
		return b.IDTokenErr
	}
	b.signIn("google-user@example.com")
	return nil
}

func (b *Backend) SignUp(ctx context.Context, email, password string, metadata map[string]any) error {
	if err := b.enter(ctx, "SignUp"); err != nil {
		return err
	}

	b.mu.Lock()
	b.LastMetadata = metadata
	b.mu.Unlock()

	return b.SignUpErr
}

func (b *Backend) VerifyOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose) error {
	if err := b.enter(ctx, "VerifyOTP"); err != nil {
		return err
	}

	b.mu.Lock()
	b.LastPurpose = purpose
	b.mu.Unlock()

	if b.VerifyErr != nil {
		return b.VerifyErr
	}
	b.signIn(email)
	return nil
}

func (b *Backend) RequestPasswordReset(ctx context.Context, email string) error {
	if err := b.enter(ctx, "RequestPasswordReset"); err != nil {
		return err
	}
	return b.ResetErr
}

func (b *Backend) ResendSignupConfirmation(ctx context.Context, email string) error {
	if err := b.enter(ctx, "ResendSignupConfirmation"); err != nil {
		return err
	}
	return b.ResendErr
}

func (b *Backend) UpdatePassword(ctx context.Context, password string) error {
	if err := b.enter(ctx, "UpdatePassword"); err != nil {
		return err
	}

	b.mu.Lock()
	b.LastPassword = password
	b.mu.Unlock()

	return b.UpdateErr
}

func (b *Backend) CurrentUser(ctx context.Context) (domain.User, error) {
	if err := b.enter(ctx, "CurrentUser"); err != nil {
		return domain.User{}, err
	}
	if b.UserErr != nil {
		return domain.User{}, b.UserErr
	}
	return b.User, nil
}

var _ domain.Backend = (*Backend)(nil)
