package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// MailKind says which flow an emailed code belongs to.
type MailKind string

const (
	MailSignup   MailKind = "signup"
	MailRecovery MailKind = "recovery"
)

// Mail is a message the emulator would have sent. It stays in the outbox so
// developers and tests can read the code.
type Mail struct {
	To     string
	Kind   MailKind
	Code   string
	SentAt time.Time
}

type codeKey struct {
	email string
	kind  MailKind
}

type pendingCode struct {
	hash      string
	expiresAt time.Time
}

// sendCode issues a new code for email, replacing any pending one of the same
// kind. Must be called with mu held.
func (s *Service) sendCode(ctx context.Context, email string, kind MailKind) error {
	s.otpCounter++
	code, err := hotp.GenerateCodeCustom(s.otpSecret, s.otpCounter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	s.codes[codeKey{email: email, kind: kind}] = pendingCode{
		hash:      cryptox.FingerprintToken(code),
		expiresAt: now.Add(s.cfg.OTPTTL),
	}
	s.outbox = append(s.outbox, Mail{To: email, Kind: kind, Code: code, SentAt: now})

	slogx.FromContext(ctx).Info("email sent", "to", email, "kind", kind, "code", code)
	return nil
}

// consumeCode checks code against the pending one and burns it on success.
// Must be called with mu held.
func (s *Service) consumeCode(email string, kind MailKind, code string) bool {
	key := codeKey{email: email, kind: kind}
	pending, ok := s.codes[key]
	if !ok || s.now().After(pending.expiresAt) {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(pending.hash), []byte(cryptox.FingerprintToken(code))) != 1 {
		return false
	}
	delete(s.codes, key)
	return true
}

// Outbox returns every mail sent to email, oldest first. An empty email
// returns the whole outbox.
func (s *Service) Outbox(email string) []Mail {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	var out []Mail
	for _, m := range s.outbox {
		if email == "" || m.To == email {
			out = append(out, m)
		}
	}
	return out
}

// LatestCode returns the most recent code of kind mailed to email.
func (s *Service) LatestCode(email string, kind MailKind) (string, bool) {
	mails := s.Outbox(email)
	for i := len(mails) - 1; i >= 0; i-- {
		if mails[i].Kind == kind {
			return mails[i].Code, true
		}
	}
	return "", false
}

// Recover mails a recovery code when email belongs to an email/password user.
// Unknown addresses succeed silently so the endpoint cannot be used to enumerate
// accounts.
func (s *Service) Recover(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail(email)
	if !ok || !u.HasProvider(ProviderEmail) {
		return nil
	}
	return s.sendCode(ctx, email, MailRecovery)
}

// ResendSignup re-issues the signup code of an unconfirmed user.
func (s *Service) ResendSignup(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail(email)
	if !ok || u.Confirmed() {
		return nil
	}
	return s.sendCode(ctx, email, MailSignup)
}

// Verify checks an emailed code. Signup codes (type signup or email) confirm
// the address; recovery codes sign the user in so they can set a new
// password. Both start a session.
func (s *Service) Verify(ctx context.Context, typ, email, code string) (*Grant, error) {
	var kind MailKind
	switch typ {
	case "signup", "email":
		kind = MailSignup
	case "recovery":
		kind = MailRecovery
	default:
		return nil, validationError("Verify requires a verification type")
	}

	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, validationError("Verify requires an email and a token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail(email)
	if !ok || !s.consumeCode(email, kind, code) {
		return nil, ErrOTPExpired
	}

	if !u.Confirmed() {
		now := s.now()
		u.ConfirmedAt = &now
		u.UpdatedAt = now
	}

	amr := "otp"
	if kind == MailRecovery {
		amr = "recovery"
	}
	return s.issueGrant(u, amr)
}

// DeleteExpiredCodes drops codes past their expiry.
func (s *Service) DeleteExpiredCodes(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for key, c := range s.codes {
		if now.After(c.expiresAt) {
			delete(s.codes, key)
			n++
		}
	}
	return n, ctx.Err()
}
