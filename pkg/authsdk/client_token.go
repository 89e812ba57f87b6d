package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

const tokenPath = "/auth/v1/token"

// SignInWithPassword exchanges email and password for a session.
func (c *SDKClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.grant(ctx, "password", PasswordGrantRequest{Email: email, Password: password})
}

// SignInWithIDToken exchanges a federated ID token for a session. rawNonce is
// the unhashed nonce whose SHA-256 hex digest the ID token carries.
func (c *SDKClient) SignInWithIDToken(ctx context.Context, provider, idToken, rawNonce string) (*Session, error) {
	return c.grant(ctx, "id_token", IDTokenGrantRequest{
		Provider: provider,
		IDToken:  idToken,
		Nonce:    rawNonce,
	})
}

// grant calls the token endpoint and installs the resulting session. A sign-in
// or sign-out that completes while the call is in flight wins.
func (c *SDKClient) grant(ctx context.Context, grantType string, body any) (*Session, error) {
	epoch := c.sessionEpoch()

	var resp TokenResponse
	query := url.Values{"grant_type": {grantType}}
	if err := c.doJSON(ctx, http.MethodPost, tokenPath, query, "", body, &resp); err != nil {
		return nil, err
	}

	s := newSession(&resp)
	if err := c.installSession(ctx, epoch, s); err != nil {
		return nil, err
	}

	cp := *s
	return &cp, nil
}

// RefreshSession rotates the refresh token now. A rejected refresh token ends
// the session (NotAuthenticated); any other failure keeps the session and
// publishes RefreshFailure so a later attempt can recover. A result for a
// session that was signed out or replaced meanwhile is discarded with
// ErrSessionChanged.
func (c *SDKClient) RefreshSession(ctx context.Context) error {
	c.mu.RLock()
	var refreshToken string
	if c.session != nil {
		refreshToken = c.session.RefreshToken
	}
	epoch := c.epoch
	c.mu.RUnlock()

	if refreshToken == "" {
		return ErrNoSession
	}

	var resp TokenResponse
	query := url.Values{"grant_type": {"refresh_token"}}
	err := c.doJSON(ctx, http.MethodPost, tokenPath, query, "", RefreshGrantRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		if isSessionRejected(err) {
			c.logger().Info("refresh token rejected, ending session", "error", err)
			c.clearSessionIf(ctx, epoch)
			return err
		}

		c.logger().Warn("session refresh failed", "error", err)
		c.hub.publish(Status{Kind: StatusRefreshFailure, Cause: err})
		return err
	}

	return c.installSession(ctx, epoch, newSession(&resp))
}

// isSessionRejected reports whether the server refused the refresh token
// itself, as opposed to a transport or transient server failure.
func isSessionRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500 && !apiErr.Temporary()
}

// refreshLoop refreshes the session shortly before it expires.
func (c *SDKClient) refreshLoop() {
	defer close(c.doneCh)

	interval := c.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.refreshIfDue()
		}
	}
}

func (c *SDKClient) refreshIfDue() {
	c.mu.RLock()
	due := c.session != nil && c.session.ExpiresWithin(c.RefreshMargin)
	c.mu.RUnlock()

	if !due {
		return
	}

	timeout := c.HTTPClient.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = c.RefreshSession(ctx)
}
