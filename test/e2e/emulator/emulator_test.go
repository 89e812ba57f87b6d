//go:build e2e

package emulator_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestLivez(t *testing.T) {
	baseURL := setupEmulator(t, nil)

	health, err := newClient(t, baseURL).GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)
}

func TestEmailSignUpConfirmAndSignOut(t *testing.T) {
	baseURL := setupEmulator(t, nil)
	client := newClient(t, baseURL)
	ctx := t.Context()

	_, err := client.SignUp(ctx, "e2e@example.com", "secret123", map[string]any{"full_name": "E2E"})
	require.NoError(t, err)

	exists, err := client.UserExists(ctx, "e2e@example.com", "email")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = client.SignInWithPassword(ctx, "e2e@example.com", "secret123")
	require.True(t, authsdk.IsEmailNotConfirmed(err), "got %v", err)

	code := latestCode(t, baseURL, "e2e@example.com", "signup")
	session, err := client.VerifyOTP(ctx, "e2e@example.com", code, authsdk.OTPTypeEmail)
	require.NoError(t, err)
	require.Equal(t, "E2E", session.User.FullName())

	require.NoError(t, client.SignOut(ctx))
	require.Nil(t, client.CurrentSession())
}

func TestStatusStreamAgainstContainer(t *testing.T) {
	baseURL := setupEmulator(t, map[string]string{"EMULATOR_AUTOCONFIRM": "true"})
	client := newClient(t, baseURL)
	ctx := t.Context()

	statuses, cancel := client.Subscribe()
	defer cancel()

	client.Start(ctx)
	require.Equal(t, authsdk.StatusInitializing, (<-statuses).Kind)
	require.Equal(t, authsdk.StatusNotAuthenticated, (<-statuses).Kind)

	_, err := client.SignUp(ctx, "stream@example.com", "secret123", nil)
	require.NoError(t, err)

	select {
	case st := <-statuses:
		require.Equal(t, authsdk.StatusAuthenticated, st.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no Authenticated status")
	}
}

func TestGoogleIDTokenNonce(t *testing.T) {
	baseURL := setupEmulator(t, nil)
	client := newClient(t, baseURL)
	ctx := t.Context()

	nonce, err := cryptox.NewNonce()
	require.NoError(t, err)

	// A token carrying the raw nonce instead of its hash must be refused.
	_, err = client.SignInWithIDToken(ctx, "google", mintGoogleToken(t, baseURL, "g@example.com", nonce.Raw), nonce.Raw)
	require.Error(t, err)

	session, err := client.SignInWithIDToken(ctx, "google", mintGoogleToken(t, baseURL, "g@example.com", nonce.Hashed), nonce.Raw)
	require.NoError(t, err)
	require.Equal(t, "google", session.User.AppMetadata.Provider)
}

func TestRecoveryFlow(t *testing.T) {
	baseURL := setupEmulator(t, map[string]string{"EMULATOR_AUTOCONFIRM": "true"})
	client := newClient(t, baseURL)
	ctx := t.Context()

	_, err := client.SignUp(ctx, "r@example.com", "secret123", nil)
	require.NoError(t, err)
	require.NoError(t, client.SignOut(ctx))

	require.NoError(t, client.Recover(ctx, "r@example.com"))
	code := latestCode(t, baseURL, "r@example.com", "recovery")

	_, err = client.VerifyOTP(ctx, "r@example.com", code, authsdk.OTPTypeRecovery)
	require.NoError(t, err)
	_, err = client.UpdateUser(ctx, authsdk.UpdateUserRequest{Password: "newsecret1"})
	require.NoError(t, err)
	require.NoError(t, client.SignOut(ctx))

	_, err = client.SignInWithPassword(ctx, "r@example.com", "newsecret1")
	require.NoError(t, err)
}
