// Package backend adapts the GoTrue SDK to the client's domain ports.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// Backend implements domain.Backend on top of an *authsdk.SDKClient.
type Backend struct {
	sdk    *authsdk.SDKClient
	logger *slog.Logger
}

var _ domain.Backend = (*Backend)(nil)

func New(sdk *authsdk.SDKClient, logger *slog.Logger) *Backend {
	return &Backend{
		sdk:    sdk,
		logger: slogx.OrDefault(logger).With("component", "backend"),
	}
}

func (b *Backend) UserExists(ctx context.Context, email, provider string) (bool, error) {
	exists, err := b.sdk.UserExists(ctx, email, provider)
	return exists, mapError(err)
}

func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) error {
	_, err := b.sdk.SignInWithPassword(ctx, email, password)
	return mapError(err)
}

func (b *Backend) SignInWithIDToken(ctx context.Context, provider, idToken, rawNonce string) error {
	_, err := b.sdk.SignInWithIDToken(ctx, provider, idToken, rawNonce)
	return mapError(err)
}

func (b *Backend) SignUp(ctx context.Context, email, password string, metadata map[string]any) error {
	_, err := b.sdk.SignUp(ctx, email, password, metadata)
	return mapError(err)
}

// VerifyOTP picks the GoTrue OTP type from the screen that asked for the code.
func (b *Backend) VerifyOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose) error {
	typ := authsdk.OTPTypeEmail
	if purpose == domain.PurposeReset {
		typ = authsdk.OTPTypeRecovery
	}
	_, err := b.sdk.VerifyOTP(ctx, email, code, typ)
	return mapError(err)
}

func (b *Backend) RequestPasswordReset(ctx context.Context, email string) error {
	return mapError(b.sdk.Recover(ctx, email))
}

func (b *Backend) ResendSignupConfirmation(ctx context.Context, email string) error {
	return mapError(b.sdk.ResendSignup(ctx, email))
}

func (b *Backend) UpdatePassword(ctx context.Context, password string) error {
	_, err := b.sdk.UpdateUser(ctx, authsdk.UpdateUserRequest{Password: password})
	return mapError(err)
}

func (b *Backend) SignOut(ctx context.Context) error {
	return mapError(b.sdk.SignOut(ctx))
}

func (b *Backend) CurrentSession() *domain.Session {
	return toSession(b.sdk.CurrentSession())
}

func (b *Backend) CurrentUser(ctx context.Context) (domain.User, error) {
	u, err := b.sdk.GetUser(ctx)
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return toUser(*u), nil
}

// Subscribe relays the SDK status stream as domain statuses until cancel is
// called or the SDK is closed.
func (b *Backend) Subscribe() (<-chan domain.SessionStatus, func()) {
	in, cancelSDK := b.sdk.Subscribe()
	out := make(chan domain.SessionStatus, cap(in))
	done := make(chan struct{})

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case st, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- toStatus(st):
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			cancelSDK()
		})
	}
	return out, cancel
}

func toSession(s *authsdk.Session) *domain.Session {
	if s == nil {
		return nil
	}
	return &domain.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		UserID:       s.User.ID,
		Email:        s.User.Email,
	}
}

func toUser(u authsdk.User) domain.User {
	return domain.User{ID: u.ID, Email: u.Email, FullName: u.FullName()}
}

func toStatus(st authsdk.Status) domain.SessionStatus {
	out := domain.SessionStatus{Session: toSession(st.Session), Cause: st.Cause}
	switch st.Kind {
	case authsdk.StatusAuthenticated:
		out.Kind = domain.StatusAuthenticated
	case authsdk.StatusNotAuthenticated:
		out.Kind = domain.StatusNotAuthenticated
	case authsdk.StatusRefreshFailure:
		out.Kind = domain.StatusRefreshFailure
	default:
		out.Kind = domain.StatusInitializing
	}
	return out
}

// mapError converts SDK errors into the domain taxonomy, keeping the server
// message as the error text.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, authsdk.ErrNoSession) {
		return &domain.BackendError{Kind: domain.ErrNoSession, Message: "You are not signed in."}
	}
	if errors.Is(err, authsdk.ErrResendThrottled) {
		return &domain.BackendError{Kind: domain.ErrThrottled, Message: "Please wait before requesting another email."}
	}

	var apiErr *authsdk.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	var kind error
	switch {
	case apiErr.Code == authsdk.ErrorCodeEmailNotConfirmed:
		kind = domain.ErrNotVerified
	case apiErr.Code == authsdk.ErrorCodeUserAlreadyExists:
		kind = domain.ErrConflict
	case apiErr.Code == authsdk.ErrorCodeRateLimited || apiErr.Status == 429:
		kind = domain.ErrThrottled
	case apiErr.Code == authsdk.ErrorCodeSessionNotFound, apiErr.Code == authsdk.ErrorCodeBadJWT:
		kind = domain.ErrNoSession
	}
	if kind == nil {
		return err
	}
	return &domain.BackendError{Kind: kind, Message: apiErr.Message}
}
