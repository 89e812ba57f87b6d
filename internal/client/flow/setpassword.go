package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/store"
	"github.com/aussiebroadwan/passage/internal/client/validate"
)

const msgPasswordMismatch = "Passwords do not match"

// SetPasswordState is the new password form shown after a recovery code.
type SetPasswordState struct {
	Password             string
	PasswordError        string
	ConfirmPassword      string
	ConfirmPasswordError string

	IsLoading bool
}

// SetPassword saves a new password for the recovery session, then signs out
// so the user logs in with it.
type SetPassword struct {
	runner

	backend domain.Backend
	flags   store.Flags

	mu    sync.Mutex
	state SetPasswordState
}

func NewSetPassword(backend domain.Backend, flags store.Flags, logger *slog.Logger) *SetPassword {
	return &SetPassword{
		runner:  newRunner("set_password", logger),
		backend: backend,
		flags:   flags,
	}
}

func (f *SetPassword) State() SetPasswordState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *SetPassword) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Password = password
}

func (f *SetPassword) SetConfirmPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.ConfirmPassword = password
}

// Submit validates the password and its confirmation, then updates it.
func (f *SetPassword) Submit(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}

	password := f.state.Password
	result := validate.Password(password)
	f.state.PasswordError = result.ErrorMessage
	f.state.ConfirmPasswordError = ""

	if !result.Successful {
		f.mu.Unlock()
		return closed()
	}
	if password != f.state.ConfirmPassword {
		f.state.ConfirmPasswordError = msgPasswordMismatch
		f.mu.Unlock()
		return closed()
	}
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		return f.update(ctx, password)
	})
}

func (f *SetPassword) update(ctx context.Context, password string) *Event {
	if err := f.backend.UpdatePassword(ctx, password); err != nil {
		f.logError("update_password", err)

		f.mu.Lock()
		if f.alive() {
			f.state.IsLoading = false
			f.state.PasswordError = err.Error()
		}
		f.mu.Unlock()
		return nil
	}

	if err := f.backend.SignOut(ctx); err != nil {
		f.logError("sign_out", err)
	}
	if err := f.flags.ClearFlag(ctx, domain.PendingResetFlag); err != nil {
		f.logError("clear_pending_reset", err)
	}

	f.mu.Lock()
	if f.alive() {
		f.state.IsLoading = false
	}
	f.mu.Unlock()

	return &Event{Kind: EventSuccess}
}
