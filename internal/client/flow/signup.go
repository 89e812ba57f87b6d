package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/validate"
)

const msgEmailExists = "Email already exists."

// SignUpState is the registration form.
type SignUpState struct {
	Name          string
	NameError     string
	Email         string
	EmailError    string
	Password      string
	PasswordError string
	AcceptedTerms bool
	TermsError    string

	IsLoading bool
}

// SignUp registers a new email/password account. On success the caller
// routes to OTP verification with the returned email.
type SignUp struct {
	runner

	backend domain.Backend

	mu    sync.Mutex
	state SignUpState
}

func NewSignUp(backend domain.Backend, logger *slog.Logger) *SignUp {
	return &SignUp{
		runner:  newRunner("signup", logger),
		backend: backend,
	}
}

func (f *SignUp) State() SignUpState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *SignUp) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Name = name
}

func (f *SignUp) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Email = email
}

func (f *SignUp) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Password = password
}

func (f *SignUp) SetAcceptedTerms(accepted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.AcceptedTerms = accepted
}

// Submit validates every field, reporting all failures at once, then
// registers the account.
func (f *SignUp) Submit(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}

	s := f.state
	results := []validate.Result{
		validate.Name(s.Name),
		validate.Email(s.Email),
		validate.Password(s.Password),
		validate.Terms(s.AcceptedTerms),
	}
	f.state.NameError = results[0].ErrorMessage
	f.state.EmailError = results[1].ErrorMessage
	f.state.PasswordError = results[2].ErrorMessage
	f.state.TermsError = results[3].ErrorMessage

	for _, r := range results {
		if !r.Successful {
			f.mu.Unlock()
			return closed()
		}
	}
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		return f.register(ctx, s.Name, s.Email, s.Password)
	})
}

func (f *SignUp) register(ctx context.Context, name, email, password string) *Event {
	exists, err := f.backend.UserExists(ctx, email, "")
	if err != nil {
		f.logError("user_exists", err)
		f.finish(errorMessage(err))
		return nil
	}
	if exists {
		f.finish(msgEmailExists)
		return nil
	}

	if err := f.backend.SignUp(ctx, email, password, map[string]any{"full_name": name}); err != nil {
		f.logError("sign_up", err)
		f.finish(err.Error())
		return nil
	}

	f.finish("")
	return &Event{Kind: EventSuccess, Email: email}
}

func (f *SignUp) finish(emailErr string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.alive() {
		return
	}
	f.state.IsLoading = false
	f.state.EmailError = emailErr
}
