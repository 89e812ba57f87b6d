package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrNotVerified = errors.New("email not verified")
	ErrCancelled   = errors.New("cancelled")
	ErrNoSession   = errors.New("no active session")
	ErrThrottled   = errors.New("too many requests")
)

// BackendError carries the message the auth server returned together with the
// taxonomy sentinel it maps to. Error returns the server message unchanged so
// flows can show it to the user.
type BackendError struct {
	Kind    error
	Message string
}

func (e *BackendError) Error() string { return e.Message }

func (e *BackendError) Unwrap() error { return e.Kind }
