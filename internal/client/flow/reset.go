package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/validate"
)

const msgSendOTPFailed = "Failed to send OTP. Please try again."

// ResetPasswordState is the "forgot password" form.
type ResetPasswordState struct {
	Email      string
	EmailError string

	IsLoading bool
}

// ResetPassword requests a recovery code for an email/password account.
type ResetPassword struct {
	runner

	backend domain.Backend

	mu    sync.Mutex
	state ResetPasswordState
}

func NewResetPassword(backend domain.Backend, logger *slog.Logger) *ResetPassword {
	return &ResetPassword{
		runner:  newRunner("reset_password", logger),
		backend: backend,
	}
}

func (f *ResetPassword) State() ResetPasswordState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *ResetPassword) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Email = email
}

// Submit validates the email and asks the backend to mail a recovery code.
func (f *ResetPassword) Submit(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}

	email := f.state.Email
	result := validate.Email(email)
	f.state.EmailError = result.ErrorMessage
	if !result.Successful {
		f.mu.Unlock()
		return closed()
	}
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		return f.requestOTP(ctx, email)
	})
}

func (f *ResetPassword) requestOTP(ctx context.Context, email string) *Event {
	exists, err := f.backend.UserExists(ctx, email, domain.EmailProvider)
	if err != nil {
		f.logError("user_exists", err)
		f.finish(errorMessage(err))
		return nil
	}
	if !exists {
		f.finish(msgEmailNotFound)
		return nil
	}

	if err := f.backend.RequestPasswordReset(ctx, email); err != nil {
		f.logError("request_password_reset", err)
		f.finish(msgSendOTPFailed)
		return nil
	}

	f.finish("")
	return &Event{Kind: EventSuccess, Email: email}
}

func (f *ResetPassword) finish(emailErr string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.alive() {
		return
	}
	f.state.IsLoading = false
	f.state.EmailError = emailErr
}
