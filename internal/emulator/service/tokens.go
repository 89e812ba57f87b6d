package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// issueGrant starts a new session for u. Must be called with mu held.
func (s *Service) issueGrant(u *User, amr string) (*Grant, error) {
	sessionID := idx.New().String()
	s.sessions[sessionID] = session{userID: u.ID, createdAt: s.now()}
	return s.grantForSession(u, sessionID, amr)
}

// grantForSession mints an access token and a fresh refresh token within an
// existing session. Must be called with mu held.
func (s *Service) grantForSession(u *User, sessionID, amr string) (*Grant, error) {
	now := s.now()

	claims := jwtx.NewAccessClaims(s.cfg.Issuer, u.ID.String(), u.Email, sessionID, amr, s.cfg.AccessTTL, now)
	access, err := s.signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	s.refresh[cryptox.FingerprintToken(opaque)] = &refreshToken{
		sessionID: sessionID,
		userID:    u.ID,
		expiresAt: now.Add(s.cfg.RefreshTTL),
	}

	return &Grant{
		AccessToken:  access,
		RefreshToken: opaque,
		ExpiresIn:    s.cfg.AccessTTL,
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         u.clone(),
	}, nil
}

// Refresh rotates a refresh token. The presented token is revoked; presenting
// a revoked token again ends its whole session.
func (s *Service) Refresh(ctx context.Context, token string) (*Grant, error) {
	if token == "" {
		return nil, ErrRefreshNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.refresh[cryptox.FingerprintToken(token)]
	if !ok || s.now().After(rt.expiresAt) {
		return nil, ErrRefreshNotFound
	}
	if rt.revoked {
		slogx.FromContext(ctx).Warn("revoked refresh token reused, ending session", "session_id", rt.sessionID)
		s.endSession(rt.sessionID)
		return nil, ErrRefreshNotFound
	}
	if _, live := s.sessions[rt.sessionID]; !live {
		return nil, ErrRefreshNotFound
	}

	u, ok := s.users[rt.userID]
	if !ok {
		return nil, ErrRefreshNotFound
	}

	rt.revoked = true
	return s.grantForSession(u, rt.sessionID, "token_refresh")
}

// Authenticate resolves an access token to its user and session. Tokens of
// sessions that were logged out are rejected even before they expire.
func (s *Service) Authenticate(_ context.Context, accessToken string) (*User, string, error) {
	if accessToken == "" {
		return nil, "", ErrBadJWT
	}

	var claims jwtx.Claims
	if err := s.verifier.Verify(accessToken, &claims); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil, "", &Error{Status: ErrBadJWT.Status, Code: ErrBadJWT.Code, Message: "invalid JWT: token is expired"}
		}
		return nil, "", ErrBadJWT
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[claims.SessionID]; !ok {
		return nil, "", ErrSessionNotFound
	}
	u, ok := s.users[idx.ID(claims.Subject)]
	if !ok {
		return nil, "", ErrSessionNotFound
	}
	c := u.clone()
	return &c, claims.SessionID, nil
}

// Logout ends the session behind accessToken and revokes its refresh tokens.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	_, sessionID, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSession(sessionID)

	slogx.FromContext(ctx).Info("session ended", "session_id", sessionID)
	return nil
}

// endSession must be called with mu held.
func (s *Service) endSession(sessionID string) {
	delete(s.sessions, sessionID)
	for fp, rt := range s.refresh {
		if rt.sessionID == sessionID {
			delete(s.refresh, fp)
		}
	}
}

// DeleteExpiredRefreshTokens drops refresh tokens past their expiry, revoked
// ones included.
func (s *Service) DeleteExpiredRefreshTokens(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for fp, rt := range s.refresh {
		if now.After(rt.expiresAt) {
			delete(s.refresh, fp)
			n++
		}
	}
	return n, ctx.Err()
}

// ActiveSessions counts live sessions.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ExpiresInSeconds is the expires_in wire value of a grant.
func (g *Grant) ExpiresInSeconds() int {
	return int(g.ExpiresIn / time.Second)
}
