package service

import (
	"context"
	"errors"
	"maps"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// SignUp registers an email/password user. With AutoConfirm the user is
// confirmed and signed in at once; otherwise a signup code is mailed and the
// returned grant is nil.
//
// Signing up again with an unconfirmed address re-sends the code instead of
// failing, the way GoTrue does.
func (s *Service) SignUp(ctx context.Context, email, password string, data map[string]any) (*User, *Grant, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u, exists := s.userByEmail(email)
	switch {
	case exists && (u.Confirmed() || !u.HasProvider(ProviderEmail)):
		return nil, nil, ErrUserAlreadyExists
	case exists:
		u.PasswordHash = hash
		u.UpdatedAt = now
		if data != nil {
			u.Metadata = maps.Clone(data)
		}
	default:
		u = &User{
			ID:           idx.NewAt(now),
			Email:        email,
			PasswordHash: hash,
			Provider:     ProviderEmail,
			Providers:    []string{ProviderEmail},
			Metadata:     maps.Clone(data),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.users[u.ID] = u
		s.byEmail[email] = u.ID
		slogx.FromContext(ctx).Info("user signed up", "user_id", u.ID, "email", email)
	}

	if s.cfg.AutoConfirm {
		u.ConfirmedAt = &now
		grant, err := s.issueGrant(u, "password")
		if err != nil {
			return nil, nil, err
		}
		return &grant.User, grant, nil
	}

	if err := s.sendCode(ctx, email, MailSignup); err != nil {
		return nil, nil, err
	}
	c := u.clone()
	return &c, nil, nil
}

// SignInWithPassword checks email and password. Wrong credentials and unknown
// addresses fail the same way; a correct password on an unconfirmed account
// fails with ErrEmailNotConfirmed.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Grant, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	u, ok := s.userByEmail(email)
	var hash string
	if ok {
		hash = u.PasswordHash
	}
	s.mu.Unlock()

	if !ok || hash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, hash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unreadable", "user_id", u.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !u.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}
	return s.issueGrant(u, "password")
}

// UpdateUser changes the password and/or merges metadata for the user behind
// accessToken.
func (s *Service) UpdateUser(ctx context.Context, accessToken, password string, data map[string]any) (*User, error) {
	u, _, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var hash string
	if password != "" {
		if utf8.RuneCountInString(password) < MinPasswordLength {
			return nil, ErrWeakPassword
		}
		if u.PasswordHash != "" && cryptox.VerifyPassword(password, u.PasswordHash) == nil {
			return nil, ErrSamePassword
		}
		if hash, err = cryptox.HashPassword(password); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[u.ID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if hash != "" {
		stored.PasswordHash = hash
		if !stored.HasProvider(ProviderEmail) {
			stored.Providers = append(stored.Providers, ProviderEmail)
		}
	}
	if len(data) > 0 {
		if stored.Metadata == nil {
			stored.Metadata = make(map[string]any, len(data))
		}
		maps.Copy(stored.Metadata, data)
	}
	stored.UpdatedAt = s.now()

	slogx.FromContext(ctx).Info("user updated", "user_id", stored.ID, "password_changed", hash != "")
	c := stored.clone()
	return &c, nil
}

// Directory lists users whose email matches and, when provider is not empty,
// who can sign in through provider.
func (s *Service) Directory(ctx context.Context, email, provider string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail(email)
	if !ok || (provider != "" && !u.HasProvider(provider)) {
		return []User{}, nil
	}
	return []User{u.clone()}, nil
}

// Users returns every user ordered by ID, which is creation order.
func (s *Service) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.clone())
	}
	slices.SortFunc(out, func(a, b User) int { return strings.Compare(a.ID.String(), b.ID.String()) })
	return out
}
