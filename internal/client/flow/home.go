package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
)

const msgLogoutFailed = "Logout failed. Please try again."

// HomeState is the signed-in landing screen.
type HomeState struct {
	UserName     string
	AccessToken  string
	RefreshToken string
	ErrorMessage string

	IsLoading bool
}

// Home shows who is signed in and offers sign-out.
type Home struct {
	runner

	backend domain.Backend

	mu    sync.Mutex
	state HomeState
}

func NewHome(backend domain.Backend, logger *slog.Logger) *Home {
	return &Home{
		runner:  newRunner("home", logger),
		backend: backend,
	}
}

func (f *Home) State() HomeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load fetches the user profile and the current token pair. It blocks until
// the profile request finishes.
func (f *Home) Load(ctx context.Context) HomeState {
	f.mu.Lock()
	f.state.IsLoading = true
	f.mu.Unlock()

	access, refresh := "No Access Token", "No Refresh Token"
	if s := f.backend.CurrentSession(); s != nil {
		access, refresh = s.AccessToken, s.RefreshToken
	}

	next := HomeState{AccessToken: access, RefreshToken: refresh}

	user, err := f.backend.CurrentUser(ctx)
	if err != nil {
		f.logError("current_user", err)
		next.UserName = "Guest"
		next.ErrorMessage = "Failed to fetch user details: " + err.Error()
	} else {
		next.UserName = user.DisplayName()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = next
	return next
}

// SignOut ends the session. The channel yields SignedOut on success;
// on failure ErrorMessage is set instead.
func (f *Home) SignOut(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		err := f.backend.SignOut(ctx)
		if err != nil {
			f.logError("sign_out", err)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.alive() {
			f.state.IsLoading = false
			if err != nil {
				f.state.ErrorMessage = msgLogoutFailed
			}
		}

		if err != nil {
			return nil
		}
		return &Event{Kind: EventSignedOut}
	})
}
