package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/passage/internal/client/clienttest"
	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type stubCredentials struct{ err error }

func (s stubCredentials) RequestIDToken(_ context.Context, nonceHash string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "id-token-for-" + nonceHash, nil
}

func runShell(t *testing.T, be *clienttest.Backend, flags *clienttest.Flags, start domain.Screen, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	sh := NewShell(be, flags, stubCredentials{}, in, &out, slogx.Discard())

	require.NoError(t, sh.Run(t.Context(), start))
	return out.String()
}

func TestShellLoginAndSignOut(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	be.AddUser("ada@example.com", domain.EmailProvider)
	be.User = domain.User{Email: "ada@example.com", FullName: "Ada Lovelace"}

	out := runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin,
		"ada@example.com", "secret123",
		":signout",
		":quit",
	)

	require.Contains(t, out, "Welcome, Ada Lovelace")
	require.True(t, be.Called("SignInWithPassword"))
	require.True(t, be.Called("SignOut"))
	require.Nil(t, be.CurrentSession())
}

func TestShellShowsFieldErrors(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	out := runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin, "not-an-email", "short")

	require.Contains(t, out, "Please enter a valid email")
	require.Contains(t, out, "Password must be at least 8 characters long")
	require.Empty(t, be.Calls(), "validation failures never reach the backend")
}

func TestShellSignUpRoutesThroughOTP(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	out := runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin,
		":signup",
		"Grace Hopper", "grace@example.com", "secret123", "y",
		"123456",
	)

	require.Contains(t, out, "We sent a verification code to grace@example.com")
	require.Contains(t, out, "== Verify grace@example.com ==")
	require.Equal(t, domain.PurposeSignUp, be.LastPurpose)
	require.Equal(t, map[string]any{"full_name": "Grace Hopper"}, be.LastMetadata)
	require.Contains(t, out, "== Sign in ==", "a verified signup returns to login")
}

func TestShellPasswordReset(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	be.AddUser("ada@example.com", domain.EmailProvider)
	flags := clienttest.NewFlags()

	out := runShell(t, be, flags, domain.ScreenLogin,
		":reset",
		"ada@example.com",
		"12 34 56",
		"newpass123", "newpass123",
	)

	require.Contains(t, out, "We sent a recovery code to ada@example.com")
	require.Contains(t, out, "Password updated")
	require.Equal(t, domain.PurposeReset, be.LastPurpose)
	require.Equal(t, "newpass123", be.LastPassword)
	require.False(t, flags.Peek(domain.PendingResetFlag))
}

func TestShellGoogleSignIn(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	out := runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin, ":google")

	require.Contains(t, out, "Welcome")
	require.True(t, strings.HasPrefix(be.LastIDToken, "id-token-for-"))
	require.NotEmpty(t, be.LastNonce)
	require.NotContains(t, be.LastIDToken, be.LastNonce, "the provider only sees the hash")
}

func TestShellMailboxHint(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := NewShell(clienttest.NewBackend(), clienttest.NewFlags(), nil,
		strings.NewReader(":quit\n"), &out, slogx.Discard())
	sh.Mailbox = func(email string, purpose domain.OTPPurpose) (string, bool) {
		return "654321", purpose == domain.PurposeLogin
	}

	_, err := sh.verifyOTP(t.Context(), "a@b.co", domain.PurposeLogin)
	require.ErrorIs(t, err, errQuit)
	require.Contains(t, out.String(), "latest code: 654321")
}

func TestShellKeepsFieldWhitespace(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	out := runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin,
		"  :signup  ",
		"  Grace Hopper", "grace@example.com", "secret123", "y",
	)

	require.Contains(t, out, "== Create account ==", "commands are matched after trimming")
	require.Contains(t, out, "The name must not have leading or trailing spaces")
	require.Empty(t, be.Calls())
}

func TestShellPasswordKeepsEdgeSpaces(t *testing.T) {
	t.Parallel()

	be := clienttest.NewBackend()
	be.AddUser("ada@example.com", domain.EmailProvider)

	runShell(t, be, clienttest.NewFlags(), domain.ScreenLogin,
		":reset",
		"ada@example.com",
		"123456",
		" newpass123 ", " newpass123 ",
	)

	require.Equal(t, " newpass123 ", be.LastPassword)
}

func TestShellInvalidOTPRouteFallsBackToLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		purpose domain.OTPPurpose
	}{
		{"unknown purpose", "a@b.co", domain.OTPPurpose("bogus")},
		{"missing email", "", domain.PurposeSignUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			be := clienttest.NewBackend()
			var out bytes.Buffer
			sh := NewShell(be, clienttest.NewFlags(), nil, strings.NewReader(""), &out, slogx.Discard())

			next, err := sh.verifyOTP(t.Context(), tt.email, tt.purpose)
			require.NoError(t, err)
			require.Equal(t, domain.ScreenLogin, next.screen)
			require.NotContains(t, out.String(), "== Verify")
			require.Empty(t, be.Calls())
		})
	}
}
