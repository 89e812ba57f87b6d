package service

import (
	"net/http"

	"github.com/aussiebroadwan/passage/pkg/authsdk"
)

// Error is a GoTrue-shaped failure: HTTP status, error_code and message.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrorCodeWeakPassword is returned for passwords below MinPasswordLength.
const ErrorCodeWeakPassword = "weak_password"

var (
	ErrInvalidCredentials = &Error{http.StatusBadRequest, authsdk.ErrorCodeInvalidCredentials, "Invalid login credentials"}
	ErrEmailNotConfirmed  = &Error{http.StatusBadRequest, authsdk.ErrorCodeEmailNotConfirmed, "Email not confirmed"}
	ErrUserAlreadyExists  = &Error{http.StatusUnprocessableEntity, authsdk.ErrorCodeUserAlreadyExists, "User already registered"}
	ErrOTPExpired         = &Error{http.StatusForbidden, authsdk.ErrorCodeOTPExpired, "Token has expired or is invalid"}
	ErrRefreshNotFound    = &Error{http.StatusBadRequest, authsdk.ErrorCodeRefreshNotFound, "Invalid Refresh Token: Refresh Token Not Found"}
	ErrSessionNotFound    = &Error{http.StatusForbidden, authsdk.ErrorCodeSessionNotFound, "Session from session_id claim in JWT does not exist"}
	ErrBadJWT             = &Error{http.StatusForbidden, authsdk.ErrorCodeBadJWT, "invalid JWT: unable to parse or verify signature"}
	ErrSamePassword       = &Error{http.StatusUnprocessableEntity, authsdk.ErrorCodeSamePassword, "New password should be different from the old password."}
	ErrWeakPassword       = &Error{http.StatusUnprocessableEntity, ErrorCodeWeakPassword, "Password should be at least 6 characters."}
	ErrInvalidEmail       = &Error{http.StatusBadRequest, authsdk.ErrorCodeValidationFailed, "Unable to validate email address: invalid format"}
)

func validationError(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: authsdk.ErrorCodeValidationFailed, Message: msg}
}
