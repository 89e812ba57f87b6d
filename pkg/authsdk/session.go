package authsdk

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated user session. Values returned by the client
// are copies; mutate them freely.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// ExpiresWithin reports whether the access token expires within d from now.
// A session with no known expiry never expires.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(s.ExpiresAt) < d
}

// newSession builds a Session from a token response. Expiry comes from
// expires_at, then expires_in, then the access token's exp claim.
func newSession(resp *TokenResponse) *Session {
	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}

	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	default:
		s.ExpiresAt = tokenExpiry(resp.AccessToken)
	}

	return s
}

// tokenExpiry reads exp from a JWT without verifying it. The signature is the
// server's concern; the client only needs to know when to refresh.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ============================================================================
// Session Storage
// ============================================================================

// SessionStorage persists a session between process runs. LoadSession
// returns (nil, nil) when nothing is stored.
type SessionStorage interface {
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, s *Session) error
	RemoveSession(ctx context.Context) error
}

// MemoryStorage keeps the session in process memory.
type MemoryStorage struct {
	mu      sync.Mutex
	session *Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) LoadSession(context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryStorage) SaveSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.session = &cp
	return nil
}

func (m *MemoryStorage) RemoveSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}
