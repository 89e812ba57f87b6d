package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token so
// refresh tokens can be looked up without keeping the raw value around.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Nonce is a single-use value bound to one federated credential exchange.
// Hashed goes to the identity provider and ends up in the ID token's nonce
// claim; Raw goes to the auth backend, which hashes it again and compares.
type Nonce struct {
	Raw    string
	Hashed string
}

// NewNonce returns a fresh random nonce and its lowercase hex SHA-256 digest.
func NewNonce() (Nonce, error) {
	raw, err := GenerateToken(TokenSize128)
	if err != nil {
		return Nonce{}, err
	}
	return Nonce{Raw: raw, Hashed: HashNonce(raw)}, nil
}

// HashNonce is the digest format Google and GoTrue agree on.
func HashNonce(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
