package domain

import (
	"fmt"
	"time"
)

// Session is the signed-in user's token pair as observed by the client. The
// backend owns it; the coordinator only reads it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

// User is the profile of the signed-in user.
type User struct {
	ID       string
	Email    string
	FullName string
}

// DisplayName is the full name, else the email, else "Guest".
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Email != "":
		return u.Email
	default:
		return "Guest"
	}
}

// StatusKind tags a SessionStatus.
type StatusKind int

const (
	StatusInitializing StatusKind = iota
	StatusAuthenticated
	StatusNotAuthenticated
	StatusRefreshFailure
)

// SessionStatus is one transition of the backend's session status stream.
// Session is set for StatusAuthenticated, Cause for StatusRefreshFailure.
type SessionStatus struct {
	Kind    StatusKind
	Session *Session
	Cause   error
}

// Notification is the human-readable line shown for a status transition.
func (s SessionStatus) Notification() string {
	switch s.Kind {
	case StatusAuthenticated:
		return "Authenticated"
	case StatusNotAuthenticated:
		return "User is not authenticated"
	case StatusInitializing:
		return "Auth is initializing"
	case StatusRefreshFailure:
		return fmt.Sprintf("Session refresh failed: %v", s.Cause)
	default:
		return fmt.Sprintf("Other auth state: %d", int(s.Kind))
	}
}
