package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestNewNonceHashesRawValue(t *testing.T) {
	t.Parallel()

	n, err := NewNonce()
	require.NoError(t, err)
	require.NotEqual(t, n.Raw, n.Hashed)

	sum := sha256.Sum256([]byte(n.Raw))
	require.Equal(t, hex.EncodeToString(sum[:]), n.Hashed)

	// Every exchange gets its own nonce
	other, err := NewNonce()
	require.NoError(t, err)
	require.NotEqual(t, n.Raw, other.Raw)
}

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("abc12345")
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("abc12345", hash))
	require.ErrorIs(t, VerifyPassword("abc12346", hash), ErrPasswordMismatch)
	require.Error(t, VerifyPassword("abc12345", "$bcrypt$nope"))
}
