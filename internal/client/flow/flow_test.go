package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/passage/internal/client/clienttest"
	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// collect drains a one-shot event channel, failing if it stays open.
func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var got []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("event channel was not closed")
			return nil
		}
	}
}

type fakeCredentials struct {
	token     string
	err       error
	nonceHash string
}

func (c *fakeCredentials) RequestIDToken(_ context.Context, nonceHash string) (string, error) {
	c.nonceHash = nonceHash
	return c.token, c.err
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("not-an-email")
	f.SetPassword("short")

	require.Empty(t, collect(t, f.Submit(t.Context())))

	st := f.State()
	require.Equal(t, "Please enter a valid email", st.EmailError)
	require.Equal(t, "Password must be at least 8 characters long", st.PasswordError)
	require.False(t, st.IsLoading)
	require.Empty(t, backend.Calls(), "invalid input never reaches the backend")
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("nobody@example.com")
	f.SetPassword("secret123")

	require.Empty(t, collect(t, f.Submit(t.Context())))

	st := f.State()
	require.Equal(t, "Email do not exists.", st.EmailError)
	require.False(t, st.IsLoading)
	require.Equal(t, []string{"UserExists"}, backend.Calls())
}

func TestLoginGoogleAccountIsNotAnEmailAccount(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("g@example.com", domain.GoogleProvider)
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("g@example.com")
	f.SetPassword("secret123")
	collect(t, f.Submit(t.Context()))

	require.Equal(t, "Email do not exists.", f.State().EmailError)
	require.False(t, backend.Called("SignInWithPassword"))
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	events := collect(t, f.Submit(t.Context()))
	require.Equal(t, []Event{{Kind: EventSuccess, Email: "ada@example.com"}}, events)
	require.False(t, f.State().IsLoading)
	require.NotNil(t, backend.CurrentSession())
}

func TestLoginNotVerified(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	backend.SignInErr = &domain.BackendError{Kind: domain.ErrNotVerified, Message: "Email not confirmed"}
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	events := collect(t, f.Submit(t.Context()))
	require.Equal(t, []Event{{Kind: EventEmailNotVerified, Email: "ada@example.com"}}, events)
	require.True(t, backend.Called("ResendSignupConfirmation"))
	require.Equal(t, "Email not verified. Verification email sent.", f.State().PasswordError)
}

func TestLoginNotVerifiedResendFails(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	backend.SignInErr = &domain.BackendError{Kind: domain.ErrNotVerified, Message: "Email not confirmed"}
	backend.ResendErr = &domain.BackendError{Kind: domain.ErrThrottled, Message: "slow down"}
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	events := collect(t, f.Submit(t.Context()))
	require.Len(t, events, 1)
	require.Equal(t, EventEmailNotVerified, events[0].Kind)
}

func TestLoginBackendFailure(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	backend.SignInErr = errors.New("Invalid login credentials")
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	require.Empty(t, collect(t, f.Submit(t.Context())))
	st := f.State()
	require.Equal(t, "Invalid login credentials", st.PasswordError)
	require.Empty(t, st.EmailError)
	require.False(t, st.IsLoading)

	// Resubmission is allowed after a failure.
	backend.SignInErr = nil
	require.Len(t, collect(t, f.Submit(t.Context())), 1)
}

func TestLoginSubmitIsGuardedWhileLoading(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	backend.Gate = make(chan struct{})
	f := NewLogin(backend, nil, slogx.Discard())
	defer f.Close()

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	first := f.Submit(t.Context())
	require.True(t, f.State().IsLoading)

	require.Empty(t, collect(t, f.Submit(t.Context())), "second submit is ignored")

	close(backend.Gate)
	require.Len(t, collect(t, first), 1)
	require.Equal(t, 2, len(backend.Calls()), "one lookup and one sign-in")
}

func TestCloseDiscardsLateResults(t *testing.T) {
	t.Parallel()

	backend := clienttest.NewBackend()
	backend.AddUser("ada@example.com", domain.EmailProvider)
	backend.Gate = make(chan struct{})
	f := NewLogin(backend, nil, slogx.Discard())

	f.SetEmail("ada@example.com")
	f.SetPassword("secret123")

	events := f.Submit(t.Context())
	f.Close()

	require.Empty(t, collect(t, events))
	require.False(t, backend.Called("SignInWithPassword"))
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	t.Run("success passes raw nonce to backend and hash to provider", func(t *testing.T) {
		backend := clienttest.NewBackend()
		creds := &fakeCredentials{token: "id-token"}
		f := NewLogin(backend, creds, slogx.Discard())
		defer f.Close()

		events := collect(t, f.SignInWithGoogle(t.Context()))
		require.Equal(t, []Event{{Kind: EventSuccess, Email: "Google user"}}, events)
		require.False(t, f.State().IsGoogleLoading)

		require.Equal(t, "id-token", backend.LastIDToken)
		require.NotEmpty(t, backend.LastNonce)
		require.Equal(t, cryptox.HashNonce(backend.LastNonce), creds.nonceHash)
		require.NotEqual(t, backend.LastNonce, creds.nonceHash)
	})

	t.Run("nonce is fresh per attempt", func(t *testing.T) {
		backend := clienttest.NewBackend()
		creds := &fakeCredentials{token: "id-token"}
		f := NewLogin(backend, creds, slogx.Discard())
		defer f.Close()

		collect(t, f.SignInWithGoogle(t.Context()))
		first := backend.LastNonce
		collect(t, f.SignInWithGoogle(t.Context()))
		require.NotEqual(t, first, backend.LastNonce)
	})

	t.Run("cancellation emits nothing", func(t *testing.T) {
		backend := clienttest.NewBackend()
		creds := &fakeCredentials{err: domain.ErrCancelled}
		f := NewLogin(backend, creds, slogx.Discard())
		defer f.Close()

		require.Empty(t, collect(t, f.SignInWithGoogle(t.Context())))
		require.False(t, f.State().IsGoogleLoading)
		require.False(t, backend.Called("SignInWithIDToken"))
	})

	t.Run("provider failure emits failure", func(t *testing.T) {
		backend := clienttest.NewBackend()
		creds := &fakeCredentials{err: errors.New("no account on device")}
		f := NewLogin(backend, creds, slogx.Discard())
		defer f.Close()

		events := collect(t, f.SignInWithGoogle(t.Context()))
		require.Equal(t, []Event{{Kind: EventFailure, Message: "no account on device"}}, events)
	})

	t.Run("backend rejection emits failure", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.IDTokenErr = errors.New("Nonces mismatch")
		f := NewLogin(backend, &fakeCredentials{token: "t"}, slogx.Discard())
		defer f.Close()

		events := collect(t, f.SignInWithGoogle(t.Context()))
		require.Equal(t, []Event{{Kind: EventFailure, Message: "Nonces mismatch"}}, events)
	})

	t.Run("google and password sign-in are independent", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.Gate = make(chan struct{})
		backend.AddUser("ada@example.com", domain.EmailProvider)
		f := NewLogin(backend, &fakeCredentials{token: "t"}, slogx.Discard())
		defer f.Close()

		f.SetEmail("ada@example.com")
		f.SetPassword("secret123")
		password := f.Submit(t.Context())
		google := f.SignInWithGoogle(t.Context())

		st := f.State()
		require.True(t, st.IsLoading)
		require.True(t, st.IsGoogleLoading)

		close(backend.Gate)
		require.Len(t, collect(t, password), 1)
		require.Len(t, collect(t, google), 1)
	})
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("collects all field errors", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewSignUp(backend, slogx.Discard())
		defer f.Close()

		require.Empty(t, collect(t, f.Submit(t.Context())))
		st := f.State()
		require.Equal(t, "Name can't be blank or just spaces.", st.NameError)
		require.Equal(t, "The email can't be blank", st.EmailError)
		require.Equal(t, "Password must be at least 8 characters long", st.PasswordError)
		require.Equal(t, "Please accept the terms", st.TermsError)
		require.Empty(t, backend.Calls())
	})

	fill := func(f *SignUp) {
		f.SetName("Ada Lovelace")
		f.SetEmail("ada@example.com")
		f.SetPassword("secret123")
		f.SetAcceptedTerms(true)
	}

	t.Run("existing email", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.AddUser("ada@example.com", domain.GoogleProvider)
		f := NewSignUp(backend, slogx.Discard())
		defer f.Close()
		fill(f)

		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "Email already exists.", f.State().EmailError)
		require.False(t, backend.Called("SignUp"))
	})

	t.Run("success sends full name metadata", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewSignUp(backend, slogx.Discard())
		defer f.Close()
		fill(f)

		events := collect(t, f.Submit(t.Context()))
		require.Equal(t, []Event{{Kind: EventSuccess, Email: "ada@example.com"}}, events)
		require.Equal(t, map[string]any{"full_name": "Ada Lovelace"}, backend.LastMetadata)
		require.False(t, f.State().IsLoading)
	})

	t.Run("backend error lands in email slot", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.SignUpErr = errors.New("Signups not allowed for this instance")
		f := NewSignUp(backend, slogx.Discard())
		defer f.Close()
		fill(f)

		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "Signups not allowed for this instance", f.State().EmailError)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("unknown email", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewResetPassword(backend, slogx.Discard())
		defer f.Close()

		f.SetEmail("nobody@example.com")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "Email do not exists.", f.State().EmailError)
		require.False(t, backend.Called("RequestPasswordReset"))
	})

	t.Run("send failure", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.AddUser("ada@example.com", domain.EmailProvider)
		backend.ResetErr = errors.New("smtp down")
		f := NewResetPassword(backend, slogx.Discard())
		defer f.Close()

		f.SetEmail("ada@example.com")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "Failed to send OTP. Please try again.", f.State().EmailError)
	})

	t.Run("success", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.AddUser("ada@example.com", domain.EmailProvider)
		f := NewResetPassword(backend, slogx.Discard())
		defer f.Close()

		f.SetEmail("ada@example.com")
		events := collect(t, f.Submit(t.Context()))
		require.Equal(t, []Event{{Kind: EventSuccess, Email: "ada@example.com"}}, events)
	})

	t.Run("lookup failure", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.LookupErr = errors.New("connection refused")
		f := NewResetPassword(backend, slogx.Discard())
		defer f.Close()

		f.SetEmail("ada@example.com")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "An error occurred: connection refused", f.State().EmailError)
	})
}

func newOTP(purpose domain.OTPPurpose) (*OTP, *clienttest.Backend, *clienttest.Flags) {
	backend := clienttest.NewBackend()
	flags := clienttest.NewFlags()
	return NewOTP(backend, flags, "ada@example.com", purpose, slogx.Discard()), backend, flags
}

func TestOTPDigitEntry(t *testing.T) {
	t.Parallel()

	t.Run("entering into empty focused slot advances focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(0)
		f.EnterDigit(1, 0)
		require.Equal(t, 1, f.State().FocusedIndex)

		f.EnterDigit(2, 1)
		require.Equal(t, 2, f.State().FocusedIndex)
	})

	t.Run("focus skips filled slots", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(2)
		f.EnterDigit(5, 2)
		f.ChangeFocus(0)
		f.EnterDigit(1, 0)
		f.ChangeFocus(1)
		f.EnterDigit(2, 1)
		require.Equal(t, 3, f.State().FocusedIndex)
	})

	t.Run("no empty slot after focus keeps focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		for i := 1; i < OTPLength; i++ {
			f.ChangeFocus(i)
			f.EnterDigit(i, i)
		}
		f.ChangeFocus(0)
		f.EnterDigit(9, 0)
		require.Equal(t, 0, f.State().FocusedIndex)
	})

	t.Run("last slot unsets focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(OTPLength - 1)
		f.EnterDigit(3, OTPLength-1)
		require.Equal(t, NoFocus, f.State().FocusedIndex)
	})

	t.Run("overwriting a filled slot keeps focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(0)
		f.EnterDigit(1, 0)
		f.ChangeFocus(0)
		f.EnterDigit(7, 0)
		st := f.State()
		require.Equal(t, 0, st.FocusedIndex)
		require.Equal(t, 7, st.Code[0])
	})

	t.Run("removing a digit keeps focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(3)
		f.EnterDigit(NoDigit, 3)
		require.Equal(t, 3, f.State().FocusedIndex)
	})

	t.Run("backspace clears previous slot and moves focus", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.ChangeFocus(0)
		f.EnterDigit(1, 0)
		f.EnterDigit(2, 1)
		f.ChangeFocus(2)
		f.Backspace()

		st := f.State()
		require.Equal(t, 1, st.FocusedIndex)
		require.Equal(t, NoDigit, st.Code[1])
		require.Equal(t, 1, st.Code[0])

		f.Backspace()
		f.Backspace()
		st = f.State()
		require.Equal(t, 0, st.FocusedIndex)
		require.Equal(t, NoDigit, st.Code[0])
	})

	t.Run("backspace without focus is a no-op", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		f.EnterDigit(4, 2)
		f.Backspace()
		st := f.State()
		require.Equal(t, NoFocus, st.FocusedIndex)
		require.Equal(t, 4, st.Code[2])
	})

	t.Run("out of range input is ignored", func(t *testing.T) {
		f, _, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()

		before := f.State()
		f.EnterDigit(10, 0)
		f.EnterDigit(1, OTPLength)
		f.ChangeFocus(OTPLength)
		require.Equal(t, before, f.State())
	})
}

func TestOTPVerify(t *testing.T) {
	t.Parallel()

	t.Run("joins set digits in order", func(t *testing.T) {
		f, backend, _ := newOTP(domain.PurposeLogin)
		defer f.Close()

		f.EnterDigit(1, 0)
		f.EnterDigit(3, 2)
		f.EnterDigit(5, 5)
		require.Equal(t, "135", f.State().Entered())

		events := collect(t, f.Verify(t.Context()))
		require.Equal(t, []Event{{Kind: EventSuccess, Email: "ada@example.com"}}, events)
		require.Equal(t, ValidityValid, f.State().Validity)
		require.Equal(t, domain.PurposeLogin, backend.LastPurpose)
	})

	t.Run("failure marks invalid and new digit resets", func(t *testing.T) {
		f, backend, _ := newOTP(domain.PurposeSignUp)
		defer f.Close()
		backend.VerifyErr = errors.New("Token has expired or is invalid")

		events := collect(t, f.Verify(t.Context()))
		require.Len(t, events, 1)
		require.Equal(t, EventFailure, events[0].Kind)
		require.Equal(t, ValidityInvalid, f.State().Validity)

		f.EnterDigit(1, 0)
		require.Equal(t, ValidityUnknown, f.State().Validity)
	})

	t.Run("blank email is invalid without a backend call", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewOTP(backend, clienttest.NewFlags(), "  ", domain.PurposeSignUp, slogx.Discard())
		defer f.Close()

		require.Empty(t, collect(t, f.Verify(t.Context())))
		require.Equal(t, ValidityInvalid, f.State().Validity)
		require.Empty(t, backend.Calls())
	})
}

func TestOTPPurpose(t *testing.T) {
	t.Parallel()

	t.Run("reset sets pending flag on entry", func(t *testing.T) {
		f, _, flags := newOTP(domain.PurposeReset)
		defer f.Close()

		require.NoError(t, f.EnterScreen(t.Context()))
		require.True(t, flags.Peek(domain.PendingResetFlag))
		require.Equal(t, domain.ScreenSetNewPassword, f.Destination())
	})

	t.Run("signup and login leave the flag alone", func(t *testing.T) {
		for _, p := range []domain.OTPPurpose{domain.PurposeSignUp, domain.PurposeLogin} {
			f, _, flags := newOTP(p)
			require.NoError(t, f.EnterScreen(t.Context()))
			require.False(t, flags.Peek(domain.PendingResetFlag))
			f.Close()
		}
	})

	t.Run("destinations", func(t *testing.T) {
		require.Equal(t, domain.ScreenHome, domain.PurposeLogin.Destination())
		require.Equal(t, domain.ScreenLogin, domain.PurposeSignUp.Destination())
	})
}

func TestSetPassword(t *testing.T) {
	t.Parallel()

	t.Run("invalid password", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewSetPassword(backend, clienttest.NewFlags(), slogx.Discard())
		defer f.Close()

		f.SetPassword("abcdefgh")
		f.SetConfirmPassword("abcdefgh")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "Password must include a letter and a digit.", f.State().PasswordError)
		require.Empty(t, backend.Calls())
	})

	t.Run("mismatch", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewSetPassword(backend, clienttest.NewFlags(), slogx.Discard())
		defer f.Close()

		f.SetPassword("secret123")
		f.SetConfirmPassword("secret124")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		st := f.State()
		require.Empty(t, st.PasswordError)
		require.Equal(t, "Passwords do not match", st.ConfirmPasswordError)
		require.Empty(t, backend.Calls())
	})

	t.Run("success signs out and clears flag", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.SetSession(&domain.Session{AccessToken: "recovery"})
		flags := clienttest.NewFlags()
		require.NoError(t, flags.SetFlag(t.Context(), domain.PendingResetFlag, true))

		f := NewSetPassword(backend, flags, slogx.Discard())
		defer f.Close()

		f.SetPassword("secret123")
		f.SetConfirmPassword("secret123")
		events := collect(t, f.Submit(t.Context()))
		require.Equal(t, []Event{{Kind: EventSuccess}}, events)

		require.Equal(t, []string{"UpdatePassword", "SignOut"}, backend.Calls())
		require.Equal(t, "secret123", backend.LastPassword)
		require.Nil(t, backend.CurrentSession())
		require.False(t, flags.Peek(domain.PendingResetFlag))
	})

	t.Run("backend failure keeps flag", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.UpdateErr = errors.New("New password should be different from the old password.")
		flags := clienttest.NewFlags()
		require.NoError(t, flags.SetFlag(t.Context(), domain.PendingResetFlag, true))

		f := NewSetPassword(backend, flags, slogx.Discard())
		defer f.Close()

		f.SetPassword("secret123")
		f.SetConfirmPassword("secret123")
		require.Empty(t, collect(t, f.Submit(t.Context())))
		require.Equal(t, "New password should be different from the old password.", f.State().PasswordError)
		require.True(t, flags.Peek(domain.PendingResetFlag))
		require.False(t, backend.Called("SignOut"))
	})
}

func TestHome(t *testing.T) {
	t.Parallel()

	t.Run("loads display name and tokens", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.SetSession(&domain.Session{AccessToken: "a1", RefreshToken: "r1"})
		backend.User = domain.User{Email: "ada@example.com", FullName: "Ada"}
		f := NewHome(backend, slogx.Discard())
		defer f.Close()

		st := f.Load(t.Context())
		require.Equal(t, HomeState{UserName: "Ada", AccessToken: "a1", RefreshToken: "r1"}, st)
	})

	t.Run("falls back to email then guest", func(t *testing.T) {
		require.Equal(t, "ada@example.com", domain.User{Email: "ada@example.com"}.DisplayName())
		require.Equal(t, "Guest", domain.User{}.DisplayName())
	})

	t.Run("profile failure shows guest", func(t *testing.T) {
		backend := clienttest.NewBackend()
		backend.UserErr = errors.New("JWT expired")
		f := NewHome(backend, slogx.Discard())
		defer f.Close()

		st := f.Load(t.Context())
		require.Equal(t, "Guest", st.UserName)
		require.Equal(t, "No Access Token", st.AccessToken)
		require.Equal(t, "No Refresh Token", st.RefreshToken)
		require.Equal(t, "Failed to fetch user details: JWT expired", st.ErrorMessage)
	})

	t.Run("sign out", func(t *testing.T) {
		backend := clienttest.NewBackend()
		f := NewHome(backend, slogx.Discard())
		defer f.Close()

		require.Equal(t, []Event{{Kind: EventSignedOut}}, collect(t, f.SignOut(t.Context())))

		backend.SignOutErr = errors.New("offline")
		require.Empty(t, collect(t, f.SignOut(t.Context())))
		require.Equal(t, "Logout failed. Please try again.", f.State().ErrorMessage)
	})
}
