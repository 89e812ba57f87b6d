package domain

import "context"

// Directory answers whether an email is registered in the public users table.
// An empty provider matches any provider.
type Directory interface {
	UserExists(ctx context.Context, email, provider string) (bool, error)
}

// SessionSource exposes the backend's session and its status stream.
type SessionSource interface {
	CurrentSession() *Session

	// Subscribe returns a channel that first yields the latest status and then
	// every transition until cancel is called.
	Subscribe() (<-chan SessionStatus, func())

	SignOut(ctx context.Context) error
}

// Backend is the auth capability surface the flows drive.
type Backend interface {
	Directory
	SessionSource

	SignInWithPassword(ctx context.Context, email, password string) error
	SignInWithIDToken(ctx context.Context, provider, idToken, rawNonce string) error
	SignUp(ctx context.Context, email, password string, metadata map[string]any) error
	VerifyOTP(ctx context.Context, email, code string, purpose OTPPurpose) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResendSignupConfirmation(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, password string) error
	CurrentUser(ctx context.Context) (User, error)
}

// CredentialProvider obtains a federated ID token whose nonce claim is
// nonceHash. It returns ErrCancelled when the user dismisses the prompt.
type CredentialProvider interface {
	RequestIDToken(ctx context.Context, nonceHash string) (string, error)
}
