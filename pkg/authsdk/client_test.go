package authsdk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeGoTrue serves the handful of endpoints the client tests need.
type fakeGoTrue struct {
	refreshStatus atomic.Int32 // 0 means success
	refreshCalls  atomic.Int32
	logoutCalls   atomic.Int32

	mu       sync.Mutex
	lastAuth string
	lastKey  string

	// refreshGate, when set, holds refresh grants until it is closed.
	// refreshHeld receives once a refresh is being held.
	refreshGate chan struct{}
	refreshHeld chan struct{}
}

func (f *fakeGoTrue) holdRefreshes() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshGate = make(chan struct{})
	f.refreshHeld = make(chan struct{}, 1)
	return sync.OnceFunc(func() { close(f.refreshGate) })
}

func (f *fakeGoTrue) waitRefresh(r *http.Request) {
	f.mu.Lock()
	gate, held := f.refreshGate, f.refreshHeld
	f.mu.Unlock()
	if gate == nil {
		return
	}

	held <- struct{}{}
	select {
	case <-gate:
	case <-r.Context().Done():
	}
}

func (f *fakeGoTrue) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			var req PasswordGrantRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			switch req.Password {
			case "unconfirmed":
				writeErr(w, http.StatusBadRequest, ErrorCodeEmailNotConfirmed, "Email not confirmed")
			case "secret123":
				writeJSON(w, tokenResponse("access-1", "refresh-1", req.Email, 3600))
			default:
				writeErr(w, http.StatusBadRequest, ErrorCodeInvalidCredentials, "Invalid login credentials")
			}
		case "refresh_token":
			f.refreshCalls.Add(1)
			f.waitRefresh(r)
			if code := f.refreshStatus.Load(); code != 0 {
				writeErr(w, int(code), ErrorCodeRefreshNotFound, "Invalid Refresh Token")
				return
			}
			writeJSON(w, tokenResponse("access-2", "refresh-2", "a@b.co", 3600))
		default:
			writeErr(w, http.StatusBadRequest, ErrorCodeValidationFailed, "unsupported grant_type")
		}
	})

	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var req SignUpRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, map[string]any{"id": "user-1", "email": req.Email})
	})

	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.lastKey = r.Header.Get("apikey")
		f.mu.Unlock()
		writeJSON(w, User{ID: "user-1", Email: "a@b.co", UserMetadata: map[string]any{"full_name": "Ada"}})
	})

	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /auth/v1/resend", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{})
	})

	mux.HandleFunc("GET /rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") == "eq.known@b.co" {
			writeJSON(w, []DirectoryEntry{{Email: "known@b.co"}})
			return
		}
		writeJSON(w, []DirectoryEntry{})
	})

	return mux
}

func tokenResponse(access, refresh, email string, expiresIn int) TokenResponse {
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		User:         User{ID: "user-1", Email: email},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: status, ErrorCode: code, Msg: msg})
}

func newTestClient(t *testing.T) (*SDKClient, *fakeGoTrue) {
	t.Helper()

	fake := &fakeGoTrue{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL, "anon-key")
	client.RefreshInterval = time.Hour
	t.Cleanup(func() { _ = client.Close() })

	return client, fake
}

func nextStatus(t *testing.T, ch <-chan Status) Status {
	t.Helper()

	select {
	case st, ok := <-ch:
		require.True(t, ok, "status channel closed")
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status")
		return Status{}
	}
}

func TestStatusStream(t *testing.T) {
	t.Parallel()

	t.Run("empty storage settles on not authenticated", func(t *testing.T) {
		client, _ := newTestClient(t)
		require.Equal(t, StatusInitializing, client.Status().Kind)

		ch, cancel := client.Subscribe()
		defer cancel()
		require.Equal(t, StatusInitializing, nextStatus(t, ch).Kind)

		client.Start(t.Context())
		require.Equal(t, StatusNotAuthenticated, nextStatus(t, ch).Kind)
		require.Nil(t, client.CurrentSession())
	})

	t.Run("sign in publishes authenticated", func(t *testing.T) {
		client, _ := newTestClient(t)
		client.Start(t.Context())

		ch, cancel := client.Subscribe()
		defer cancel()
		require.Equal(t, StatusNotAuthenticated, nextStatus(t, ch).Kind)

		session, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
		require.NoError(t, err)
		require.Equal(t, "access-1", session.AccessToken)

		st := nextStatus(t, ch)
		require.Equal(t, StatusAuthenticated, st.Kind)
		require.Equal(t, "a@b.co", st.Session.User.Email)
		require.NotNil(t, client.CurrentSession())
	})

	t.Run("late subscriber receives latest status first", func(t *testing.T) {
		client, _ := newTestClient(t)
		client.Start(t.Context())
		_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
		require.NoError(t, err)

		ch, cancel := client.Subscribe()
		defer cancel()
		require.Equal(t, StatusAuthenticated, nextStatus(t, ch).Kind)
	})

	t.Run("refresh network error publishes refresh failure and keeps session", func(t *testing.T) {
		client, _ := newTestClient(t)
		client.Start(t.Context())
		_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
		require.NoError(t, err)

		client.BaseURL = "http://127.0.0.1:1"

		ch, cancel := client.Subscribe()
		defer cancel()
		require.Equal(t, StatusAuthenticated, nextStatus(t, ch).Kind)

		require.Error(t, client.RefreshSession(t.Context()))
		st := nextStatus(t, ch)
		require.Equal(t, StatusRefreshFailure, st.Kind)
		require.Error(t, st.Cause)
		require.NotNil(t, client.CurrentSession())
	})

	t.Run("rejected refresh token ends session", func(t *testing.T) {
		client, fake := newTestClient(t)
		client.Start(t.Context())
		_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
		require.NoError(t, err)

		fake.refreshStatus.Store(http.StatusBadRequest)

		require.Error(t, client.RefreshSession(t.Context()))
		require.Equal(t, StatusNotAuthenticated, client.Status().Kind)
		require.Nil(t, client.CurrentSession())
	})

	t.Run("close closes subscriber channels", func(t *testing.T) {
		client, _ := newTestClient(t)
		ch, cancel := client.Subscribe()
		defer cancel()
		<-ch

		require.NoError(t, client.Close())
		_, ok := <-ch
		require.False(t, ok)
	})
}

func TestStartRestoresPersistedSession(t *testing.T) {
	t.Parallel()

	t.Run("fresh session is restored as authenticated", func(t *testing.T) {
		client, fake := newTestClient(t)
		require.NoError(t, client.Storage.SaveSession(t.Context(), &Session{
			AccessToken:  "stored",
			RefreshToken: "stored-refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}))

		client.Start(t.Context())
		require.Equal(t, StatusAuthenticated, client.Status().Kind)
		require.Equal(t, "stored", client.CurrentSession().AccessToken)
		require.Zero(t, fake.refreshCalls.Load())
	})

	t.Run("near-expiry session is refreshed", func(t *testing.T) {
		client, fake := newTestClient(t)
		require.NoError(t, client.Storage.SaveSession(t.Context(), &Session{
			AccessToken:  "stored",
			RefreshToken: "stored-refresh",
			ExpiresAt:    time.Now().Add(5 * time.Second),
		}))

		client.Start(t.Context())
		require.Equal(t, StatusAuthenticated, client.Status().Kind)
		require.Equal(t, "access-2", client.CurrentSession().AccessToken)
		require.EqualValues(t, 1, fake.refreshCalls.Load())

		persisted, err := client.Storage.LoadSession(t.Context())
		require.NoError(t, err)
		require.Equal(t, "refresh-2", persisted.RefreshToken)
	})
}

func TestSignInErrors(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	client.Start(t.Context())

	_, err := client.SignInWithPassword(t.Context(), "a@b.co", "unconfirmed")
	require.True(t, IsEmailNotConfirmed(err))

	_, err = client.SignInWithPassword(t.Context(), "a@b.co", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, ErrorCodeInvalidCredentials, apiErr.Code)
	require.Equal(t, "Invalid login credentials", apiErr.Error())
	require.Equal(t, StatusNotAuthenticated, client.Status().Kind)
}

func TestAuthenticatedRequests(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t)
	client.Start(t.Context())

	_, err := client.GetUser(t.Context())
	require.ErrorIs(t, err, ErrNoSession)

	_, err = client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.NoError(t, err)

	user, err := client.GetUser(t.Context())
	require.NoError(t, err)
	require.Equal(t, "Ada", user.FullName())
	require.Equal(t, "Ada", client.CurrentSession().User.FullName())

	fake.mu.Lock()
	require.Equal(t, "Bearer access-1", fake.lastAuth)
	require.Equal(t, "anon-key", fake.lastKey)
	fake.mu.Unlock()

	require.NoError(t, client.SignOut(t.Context()))
	require.EqualValues(t, 1, fake.logoutCalls.Load())
	require.Nil(t, client.CurrentSession())
	require.Equal(t, StatusNotAuthenticated, client.Status().Kind)
}

func TestSignOutWhenServerUnreachable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	client.Start(t.Context())
	_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.NoError(t, err)

	client.BaseURL = "http://127.0.0.1:1"
	require.Error(t, client.SignOut(t.Context()))
	require.Nil(t, client.CurrentSession())
}

func TestLateRefreshAfterSignOut(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t)
	client.Start(t.Context())
	_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.NoError(t, err)

	release := fake.holdRefreshes()
	defer release()

	refreshErr := make(chan error, 1)
	go func() { refreshErr <- client.RefreshSession(t.Context()) }()

	select {
	case <-fake.refreshHeld:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never reached the server")
	}

	ch, cancel := client.Subscribe()
	defer cancel()
	require.Equal(t, StatusAuthenticated, nextStatus(t, ch).Kind)

	require.NoError(t, client.SignOut(t.Context()))
	require.Equal(t, StatusNotAuthenticated, nextStatus(t, ch).Kind)

	release()
	select {
	case err := <-refreshErr:
		require.ErrorIs(t, err, ErrSessionChanged)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return")
	}

	require.Nil(t, client.CurrentSession())
	require.Equal(t, StatusNotAuthenticated, client.Status().Kind)

	persisted, err := client.Storage.LoadSession(t.Context())
	require.NoError(t, err)
	require.Nil(t, persisted)

	select {
	case st := <-ch:
		t.Fatalf("unexpected status after sign-out: %v", st.Kind)
	default:
	}
}

func TestRejectedRefreshKeepsNewerSession(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t)
	client.Start(t.Context())
	_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.NoError(t, err)

	fake.refreshStatus.Store(http.StatusBadRequest)
	release := fake.holdRefreshes()
	defer release()

	refreshErr := make(chan error, 1)
	go func() { refreshErr <- client.RefreshSession(t.Context()) }()
	<-fake.refreshHeld

	require.NoError(t, client.SignOut(t.Context()))
	_, err = client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.NoError(t, err)

	release()
	require.Error(t, <-refreshErr)
	require.NotNil(t, client.CurrentSession(), "a stale rejection must not end the new session")
	require.Equal(t, StatusAuthenticated, client.Status().Kind)
}

func TestRequestsAfterClose(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	client.Start(t.Context())
	require.NoError(t, client.Close())

	_, err := client.SignInWithPassword(t.Context(), "a@b.co", "secret123")
	require.ErrorIs(t, err, ErrClosed)

	_, err = client.UserExists(t.Context(), "known@b.co", "")
	require.ErrorIs(t, err, ErrClosed)
}

func TestSignUpWithoutAutoConfirm(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	client.Start(t.Context())

	user, err := client.SignUp(t.Context(), "new@b.co", "secret123", map[string]any{"full_name": "New"})
	require.NoError(t, err)
	require.Equal(t, "new@b.co", user.Email)
	require.Nil(t, client.CurrentSession())
}

func TestResendSignupIsThrottled(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	require.NoError(t, client.ResendSignup(t.Context(), "a@b.co"))
	require.ErrorIs(t, client.ResendSignup(t.Context(), "a@b.co"), ErrResendThrottled)
}

func TestUserExists(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)

	exists, err := client.UserExists(t.Context(), "known@b.co", "email")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = client.UserExists(t.Context(), "unknown@b.co", "email")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestNewSessionExpiry(t *testing.T) {
	t.Parallel()

	t.Run("expires_at wins", func(t *testing.T) {
		s := newSession(&TokenResponse{ExpiresAt: 1700000000, ExpiresIn: 60})
		require.Equal(t, time.Unix(1700000000, 0), s.ExpiresAt)
	})

	t.Run("falls back to jwt exp claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("k"))
		require.NoError(t, err)

		s := newSession(&TokenResponse{AccessToken: token})
		require.True(t, exp.Equal(s.ExpiresAt))
	})

	t.Run("opaque token never expires", func(t *testing.T) {
		s := newSession(&TokenResponse{AccessToken: "opaque"})
		require.True(t, s.ExpiresAt.IsZero())
		require.False(t, s.ExpiresWithin(time.Hour))
	})
}

func TestStatusHubDropsOldest(t *testing.T) {
	t.Parallel()

	hub := newStatusHub()
	ch, cancel := hub.subscribe()
	defer cancel()

	for range subscriberBuffer + 3 {
		hub.publish(Status{Kind: StatusNotAuthenticated})
	}
	hub.publish(Status{Kind: StatusAuthenticated})

	var last Status
	for range subscriberBuffer {
		last = <-ch
	}
	require.Equal(t, StatusAuthenticated, last.Kind)

	cancel()
	cancel()
}

func TestParseLegacyError(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadRequest}
	err := parseErrorResponse(resp, []byte(`{"error":"invalid_grant","error_description":"Email not confirmed"}`))
	require.True(t, IsEmailNotConfirmed(err))

	err = parseErrorResponse(&http.Response{StatusCode: http.StatusBadGateway}, []byte("<html>"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.Temporary())
	require.Equal(t, ErrorCodeUnexpected, apiErr.Code)

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}

var _ SessionStorage = (*MemoryStorage)(nil)
