package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errUnsupportedProvider = &Error{http.StatusBadRequest, authsdk.ErrorCodeValidationFailed, "Custom OIDC provider not allowed"}
	errNonceMismatch       = &Error{http.StatusBadRequest, authsdk.ErrorCodeValidationFailed, "Nonces mismatch"}
	errNoncePresence       = &Error{http.StatusBadRequest, authsdk.ErrorCodeValidationFailed, "Passed nonce and nonce in id_token should either both exist or not."}
	errBadIDToken          = &Error{http.StatusBadRequest, authsdk.ErrorCodeBadJWT, "Bad ID token"}
)

// MintGoogleIDToken issues an ID token the way Google would after a
// successful sign-in, for the emulator's stand-in Google account picker.
// nonceHash ends up in the nonce claim verbatim.
func (s *Service) MintGoogleIDToken(email, name, nonceHash string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", ErrInvalidEmail
	}

	now := s.now()
	claims := jwtx.IDClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    GoogleIssuer,
			Subject:   "google|" + cryptox.FingerprintToken(email)[:21],
			Audience:  jwt.ClaimStrings{s.cfg.GoogleClientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtx.DefaultIDTokenTTL)),
			ID:        jwtx.NewJTI(),
		},
		Email:         email,
		EmailVerified: true,
		Name:          name,
		Nonce:         nonceHash,
	}
	return s.googleSigner.Sign(claims)
}

// SignInWithIDToken exchanges a Google ID token for a session. The request
// carries the raw nonce and the token carries its SHA-256 hex digest; both
// must be present or both absent. A first Google sign-in creates the user;
// an existing email user gets Google linked.
func (s *Service) SignInWithIDToken(ctx context.Context, provider, idToken, rawNonce string) (*Grant, error) {
	if provider != ProviderGoogle {
		return nil, errUnsupportedProvider
	}

	var claims jwtx.IDClaims
	if err := s.googleVerifier.Verify(idToken, &claims); err != nil {
		slogx.FromContext(ctx).Info("id token rejected", "error", err)
		return nil, errBadIDToken
	}

	switch {
	case (rawNonce == "") != (claims.Nonce == ""):
		return nil, errNoncePresence
	case rawNonce != "":
		want := cryptox.HashNonce(rawNonce)
		if subtle.ConstantTimeCompare([]byte(want), []byte(claims.Nonce)) != 1 {
			return nil, errNonceMismatch
		}
	}

	email := normalizeEmail(claims.Email)
	if email == "" {
		return nil, errBadIDToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u, ok := s.userByEmail(email)
	if !ok {
		u = &User{
			ID:          idx.NewAt(now),
			Email:       email,
			Provider:    ProviderGoogle,
			Providers:   []string{ProviderGoogle},
			Metadata:    map[string]any{},
			ConfirmedAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if claims.Name != "" {
			u.Metadata["full_name"] = claims.Name
		}
		s.users[u.ID] = u
		s.byEmail[email] = u.ID
		slogx.FromContext(ctx).Info("user signed up", "user_id", u.ID, "email", email, "provider", ProviderGoogle)
	} else if !u.HasProvider(ProviderGoogle) {
		u.Providers = append(u.Providers, ProviderGoogle)
		if !u.Confirmed() && claims.EmailVerified {
			u.ConfirmedAt = &now
		}
		u.UpdatedAt = now
		slogx.FromContext(ctx).Info("identity linked", "user_id", u.ID, "provider", ProviderGoogle)
	}

	return s.issueGrant(u, "oauth")
}

// CredentialIssuer plays Google's account picker against the emulator: each
// request "picks" the configured account and returns a signed ID token.
type CredentialIssuer struct {
	Service *Service
	Email   string
	Name    string
}

// RequestIDToken returns an ID token whose nonce claim is nonceHash.
func (c *CredentialIssuer) RequestIDToken(ctx context.Context, nonceHash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := c.Service.MintGoogleIDToken(c.Email, c.Name, nonceHash)
	if err != nil {
		return "", fmt.Errorf("failed to mint id token: %w", err)
	}
	return token, nil
}
