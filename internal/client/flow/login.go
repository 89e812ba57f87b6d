package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/validate"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
)

const (
	msgEmailNotFound   = "Email do not exists."
	msgNotVerified     = "Email not verified. Verification email sent."
	msgGoogleFailed    = "Google sign-in failed"
	googleSuccessEmail = "Google user"
)

// LoginState is the login form.
type LoginState struct {
	Email         string
	EmailError    string
	Password      string
	PasswordError string

	IsLoading       bool
	IsGoogleLoading bool
}

// Login signs users in with email/password or a Google ID token.
type Login struct {
	runner

	backend     domain.Backend
	credentials domain.CredentialProvider

	mu    sync.Mutex
	state LoginState
}

// NewLogin creates the login flow. credentials may be nil when Google
// sign-in is not configured.
func NewLogin(backend domain.Backend, credentials domain.CredentialProvider, logger *slog.Logger) *Login {
	return &Login{
		runner:      newRunner("login", logger),
		backend:     backend,
		credentials: credentials,
	}
}

func (f *Login) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Login) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Email = email
}

func (f *Login) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Password = password
}

// Submit validates the form and, if valid, signs in. The returned channel
// yields Success or EmailNotVerified, or nothing when the attempt ends with a
// field error.
func (f *Login) Submit(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}

	email, password := f.state.Email, f.state.Password
	emailResult := validate.Email(email)
	passwordResult := validate.Password(password)

	f.state.EmailError = emailResult.ErrorMessage
	f.state.PasswordError = passwordResult.ErrorMessage
	if !emailResult.Successful || !passwordResult.Successful {
		f.mu.Unlock()
		return closed()
	}
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		return f.signIn(ctx, email, password)
	})
}

func (f *Login) signIn(ctx context.Context, email, password string) *Event {
	exists, err := f.backend.UserExists(ctx, email, domain.EmailProvider)
	if err != nil {
		f.logError("user_exists", err)
		f.finish(errorMessage(err), "")
		return nil
	}
	if !exists {
		f.finish(msgEmailNotFound, "")
		return nil
	}

	err = f.backend.SignInWithPassword(ctx, email, password)
	switch {
	case err == nil:
		f.finish("", "")
		return &Event{Kind: EventSuccess, Email: email}

	case errors.Is(err, domain.ErrNotVerified):
		f.logError("sign_in", err)
		if err := f.backend.ResendSignupConfirmation(ctx, email); err != nil {
			f.logError("resend_confirmation", err)
		}
		f.finish("", msgNotVerified)
		return &Event{Kind: EventEmailNotVerified, Email: email}

	default:
		f.logError("sign_in", err)
		f.finish("", err.Error())
		return nil
	}
}

// finish leaves the loading state with the given field errors.
func (f *Login) finish(emailErr, passwordErr string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.alive() {
		return
	}
	f.state.IsLoading = false
	f.state.EmailError = emailErr
	f.state.PasswordError = passwordErr
}

// SignInWithGoogle requests a Google ID token bound to a fresh nonce and
// exchanges it for a session. The channel yields Success("Google user") or
// Failure; a cancelled picker yields nothing.
func (f *Login) SignInWithGoogle(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsGoogleLoading {
		f.mu.Unlock()
		return closed()
	}
	f.state.IsGoogleLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		ev := f.googleSignIn(ctx)

		f.mu.Lock()
		if f.alive() {
			f.state.IsGoogleLoading = false
		}
		f.mu.Unlock()

		return ev
	})
}

func (f *Login) googleSignIn(ctx context.Context) *Event {
	if f.credentials == nil {
		return &Event{Kind: EventFailure, Message: "Google sign-in is not configured"}
	}

	// The provider sees only the hash; the backend gets the raw value and
	// checks it against the token's nonce claim.
	nonce, err := cryptox.NewNonce()
	if err != nil {
		f.logError("nonce", err)
		return &Event{Kind: EventFailure, Message: msgGoogleFailed}
	}

	idToken, err := f.credentials.RequestIDToken(ctx, nonce.Hashed)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled) {
			f.logger.Info("google sign-in cancelled")
			return nil
		}
		f.logError("request_id_token", err)
		return &Event{Kind: EventFailure, Message: failureMessage(err)}
	}

	if err := f.backend.SignInWithIDToken(ctx, domain.GoogleProvider, idToken, nonce.Raw); err != nil {
		f.logError("sign_in_id_token", err)
		return &Event{Kind: EventFailure, Message: failureMessage(err)}
	}

	return &Event{Kind: EventSuccess, Email: googleSuccessEmail}
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgGoogleFailed
}
