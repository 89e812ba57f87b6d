package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes, matching GoTrue's out-of-the-box configuration.
const (
	// DefaultAccessTokenTTL is the lifetime of access tokens (GoTrue jwt_exp).
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL bounds how long an unused refresh token is kept.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultIDTokenTTL is the lifetime of federated ID tokens.
	DefaultIDTokenTTL = 10 * time.Minute
)

// AudienceAuthenticated is the audience and role GoTrue stamps on user tokens.
const AudienceAuthenticated = "authenticated"

// Claims are GoTrue-style access-token claims.
type Claims struct {
	jwt.RegisteredClaims

	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// Authentication Methods Reference, e.g. ["password"] or ["oauth"]
	AMR []string `json:"amr,omitempty"`
}

// NewAccessClaims builds access claims for one session.
func NewAccessClaims(issuer, subject, email, sessionID, amr string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{AudienceAuthenticated},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:     email,
		Role:      AudienceAuthenticated,
		SessionID: sessionID,
		AMR:       []string{amr},
	}
}

// IDClaims are the OpenID Connect claims of a federated ID token, the subset
// Google sets that the auth server reads.
type IDClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`

	// Nonce is the SHA-256 hex digest of the client's raw nonce.
	Nonce string `json:"nonce,omitempty"`
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
