package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// GoTrue Error Codes
// ============================================================================

const (
	ErrorCodeEmailNotConfirmed  = "email_not_confirmed"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeUserAlreadyExists  = "user_already_exists"
	ErrorCodeOTPExpired         = "otp_expired"
	ErrorCodeValidationFailed   = "validation_failed"
	ErrorCodeBadJWT             = "bad_jwt"
	ErrorCodeSessionNotFound    = "session_not_found"
	ErrorCodeRefreshNotFound    = "refresh_token_not_found"
	ErrorCodeSamePassword       = "same_password"
	ErrorCodeRateLimited        = "over_request_rate_limit"
	ErrorCodeUnexpected         = "unexpected_failure"
)

var (
	// ErrNoSession is returned by operations that need a signed-in user.
	ErrNoSession = errors.New("authsdk: no active session")

	// ErrResendThrottled is returned when a confirmation resend was attempted
	// inside the client-side cool-down window.
	ErrResendThrottled = errors.New("authsdk: resend throttled, try again later")

	// ErrClosed is returned by requests made after Close.
	ErrClosed = errors.New("authsdk: client closed")

	// ErrSessionChanged is returned when a sign-in or refresh finished after
	// the session it started from was replaced or signed out. The result is
	// discarded.
	ErrSessionChanged = errors.New("authsdk: session changed while the request was in flight")
)

// APIError is a non-2xx response from the auth server.
type APIError struct {
	// Status is the HTTP status code
	Status int `json:"code"`

	// Code is the GoTrue error_code (e.g. "email_not_confirmed")
	Code string `json:"error_code"`

	// Message is the human-readable description
	Message string `json:"msg"`
}

// Error implements the error interface. Only the message is returned because
// callers surface it verbatim next to form fields.
func (e *APIError) Error() string {
	return e.Message
}

// Temporary reports whether retrying the same request later could succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsEmailNotConfirmed reports whether err means the user still has to confirm
// their email address.
func IsEmailNotConfirmed(err error) bool {
	return hasCode(err, ErrorCodeEmailNotConfirmed)
}

// IsUserAlreadyExists reports whether err is a duplicate signup.
func IsUserAlreadyExists(err error) bool {
	return hasCode(err, ErrorCodeUserAlreadyExists)
}

func hasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error body into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.ErrorCode != "" || errResp.Msg != "":
			return &APIError{Status: resp.StatusCode, Code: errResp.ErrorCode, Message: errResp.Msg}
		case errResp.Error != "":
			return &APIError{
				Status:  resp.StatusCode,
				Code:    legacyCode(errResp),
				Message: errResp.ErrorDescription,
			}
		}
	}

	return &APIError{
		Status:  resp.StatusCode,
		Code:    ErrorCodeUnexpected,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// legacyCode maps pre-error_code responses onto the current codes.
func legacyCode(e ErrorResponse) string {
	if e.ErrorDescription == "Email not confirmed" {
		return ErrorCodeEmailNotConfirmed
	}
	if e.Error == "invalid_grant" {
		return ErrorCodeInvalidCredentials
	}
	return e.Error
}
