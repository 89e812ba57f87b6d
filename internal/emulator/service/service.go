// Package service implements the in-memory state and rules of the auth
// emulator: users, emailed one-time codes, sessions and token issuance.
package service

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// Providers the emulator knows about.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// GoogleIssuer is the iss claim of emulator-minted Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// DefaultOTPTTL is how long an emailed code stays valid (GoTrue mailer_otp_exp).
const DefaultOTPTTL = time.Hour

// MinPasswordLength matches GoTrue's default password_min_length.
const MinPasswordLength = 6

// Config controls the emulator's auth rules.
type Config struct {
	Issuer         string        // iss claim of access tokens
	AutoConfirm    bool          // confirm signups without an emailed code
	GoogleClientID string        // required aud of Google ID tokens; empty accepts any
	AccessTTL      time.Duration // default: jwtx.DefaultAccessTokenTTL
	RefreshTTL     time.Duration // default: jwtx.DefaultRefreshTokenTTL
	OTPTTL         time.Duration // default: DefaultOTPTTL
}

// User is an account held by the emulator.
type User struct {
	ID           idx.ID
	Email        string
	PasswordHash string
	Provider     string
	Providers    []string
	Metadata     map[string]any
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Confirmed reports whether the user's email address has been verified.
func (u *User) Confirmed() bool { return u.ConfirmedAt != nil }

// HasProvider reports whether the user can sign in through provider.
func (u *User) HasProvider(provider string) bool {
	for _, p := range u.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

func (u *User) clone() User {
	c := *u
	c.Providers = append([]string(nil), u.Providers...)
	if u.Metadata != nil {
		c.Metadata = make(map[string]any, len(u.Metadata))
		for k, v := range u.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// Grant is a freshly issued session.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	ExpiresAt    time.Time
	User         User
}

type session struct {
	userID    idx.ID
	createdAt time.Time
}

type refreshToken struct {
	sessionID string
	userID    idx.ID
	expiresAt time.Time
	revoked   bool
}

// Service is the emulator's auth backend. Safe for concurrent use.
type Service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	signer         *jwtx.Signer
	verifier       *jwtx.Verifier
	googleSigner   *jwtx.Signer
	googleVerifier *jwtx.Verifier

	mu       sync.Mutex
	users    map[idx.ID]*User
	byEmail  map[string]idx.ID
	sessions map[string]session
	refresh  map[string]*refreshToken // keyed by token fingerprint
	codes    map[codeKey]pendingCode
	outbox   []Mail

	otpSecret  string
	otpCounter uint64
}

// New creates an emulator with fresh signing keys and no users.
func New(cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = jwtx.DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = DefaultOTPTTL
	}

	signer, err := jwtx.GenerateSigner(idx.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to create access token signer: %w", err)
	}
	googleSigner, err := jwtx.GenerateSigner(idx.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to create google signer: %w", err)
	}

	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to create otp secret: %w", err)
	}

	return &Service{
		cfg:            cfg,
		logger:         slogx.OrDefault(logger),
		now:            time.Now,
		signer:         signer,
		verifier:       jwtx.NewVerifier(jwtx.NewKeySet(signer), cfg.Issuer, jwtx.AudienceAuthenticated),
		googleSigner:   googleSigner,
		googleVerifier: jwtx.NewVerifier(jwtx.NewKeySet(googleSigner), GoogleIssuer, cfg.GoogleClientID),
		users:          make(map[idx.ID]*User),
		byEmail:        make(map[string]idx.ID),
		sessions:       make(map[string]session),
		refresh:        make(map[string]*refreshToken),
		codes:          make(map[codeKey]pendingCode),
		otpSecret:      base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret),
	}, nil
}

// Keys returns the public keys of access tokens.
func (s *Service) Keys() jwtx.JWKS {
	return jwtx.NewKeySet(s.signer).PublicJWKS()
}

// AutoConfirm reports whether signups skip email confirmation.
func (s *Service) AutoConfirm() bool { return s.cfg.AutoConfirm }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userByEmail must be called with mu held.
func (s *Service) userByEmail(email string) (*User, bool) {
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, false
	}
	u, ok := s.users[id]
	return u, ok
}
