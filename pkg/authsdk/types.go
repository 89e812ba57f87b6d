package authsdk

import "time"

// ============================================================================
// Wire Types (GoTrue JSON)
// ============================================================================

// ErrorResponse is the GoTrue error body. Older deployments send the
// OAuth2-style error/error_description pair instead of error_code/msg.
type ErrorResponse struct {
	Code             int    `json:"code,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	Msg              string `json:"msg,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// User is the auth user record returned by /user, /signup and inside sessions.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	AppMetadata      AppMetadata    `json:"app_metadata"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AppMetadata is the server-controlled part of a user record.
type AppMetadata struct {
	Provider  string   `json:"provider"`
	Providers []string `json:"providers,omitempty"`
}

// FullName returns the "full_name" user metadata entry if it is a string.
func (u User) FullName() string {
	name, _ := u.UserMetadata["full_name"].(string)
	return name
}

// TokenResponse is returned from the token, verify and (auto-confirm) signup endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// ============================================================================
// Request Types
// ============================================================================

// PasswordGrantRequest is the body for grant_type=password.
type PasswordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IDTokenGrantRequest is the body for grant_type=id_token. Nonce carries the raw
// nonce; the ID token itself carries its hash.
type IDTokenGrantRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
	Nonce    string `json:"nonce,omitempty"`
}

// RefreshGrantRequest is the body for grant_type=refresh_token.
type RefreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignUpRequest registers an email/password user. Data lands in user_metadata.
type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUpResponse is either a session (auto-confirm) or a bare user awaiting
// email confirmation.
type SignUpResponse struct {
	TokenResponse

	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// OTPType selects which pending code /verify checks.
type OTPType string

const (
	OTPTypeSignup   OTPType = "signup"
	OTPTypeEmail    OTPType = "email"
	OTPTypeRecovery OTPType = "recovery"
)

// VerifyRequest confirms an emailed one-time code.
type VerifyRequest struct {
	Type  OTPType `json:"type"`
	Email string  `json:"email"`
	Token string  `json:"token"`
}

// RecoverRequest asks for a password recovery code.
type RecoverRequest struct {
	Email string `json:"email"`
}

// ResendRequest re-sends a pending confirmation code.
type ResendRequest struct {
	Type  OTPType `json:"type"`
	Email string  `json:"email"`
}

// UpdateUserRequest changes attributes of the signed-in user.
type UpdateUserRequest struct {
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// DirectoryEntry is a row of the public users table.
type DirectoryEntry struct {
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
}

// HealthResponse is returned by /livez.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}
