package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// SignUp registers an email/password user with optional user metadata. When
// the server auto-confirms it also returns a session, which becomes current.
// Otherwise a confirmation code is mailed and the returned user is unconfirmed.
func (c *SDKClient) SignUp(ctx context.Context, email, password string, data map[string]any) (*User, error) {
	epoch := c.sessionEpoch()

	var resp SignUpResponse
	req := SignUpRequest{Email: email, Password: password, Data: data}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", nil, "", req, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		s := newSession(&resp.TokenResponse)
		if err := c.installSession(ctx, epoch, s); err != nil {
			return nil, err
		}
		user := s.User
		return &user, nil
	}

	return &User{ID: resp.ID, Email: resp.Email}, nil
}

// VerifyOTP checks an emailed code and installs the resulting session.
func (c *SDKClient) VerifyOTP(ctx context.Context, email, token string, typ OTPType) (*Session, error) {
	epoch := c.sessionEpoch()

	var resp TokenResponse
	req := VerifyRequest{Type: typ, Email: email, Token: token}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/verify", nil, "", req, &resp); err != nil {
		return nil, err
	}

	s := newSession(&resp)
	if err := c.installSession(ctx, epoch, s); err != nil {
		return nil, err
	}

	cp := *s
	return &cp, nil
}

// Recover mails a password recovery code to email. The server answers the
// same way whether or not the address is registered.
func (c *SDKClient) Recover(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/recover", nil, "", RecoverRequest{Email: email}, nil)
}

// ResendSignup re-sends the signup confirmation code. Calls inside
// ResendCooldown of the previous one fail with ErrResendThrottled.
func (c *SDKClient) ResendSignup(ctx context.Context, email string) error {
	if !c.resendLimiter().Allow() {
		return ErrResendThrottled
	}
	req := ResendRequest{Type: OTPTypeSignup, Email: email}
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/resend", nil, "", req, nil)
}

// GetUser fetches the signed-in user from the server and refreshes the copy
// held in the session.
func (c *SDKClient) GetUser(ctx context.Context) (*User, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/v1/user", nil, token, nil, &user); err != nil {
		return nil, err
	}

	c.replaceUser(user)
	return &user, nil
}

// UpdateUser changes the signed-in user's password and/or metadata.
func (c *SDKClient) UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.doJSON(ctx, http.MethodPut, "/auth/v1/user", nil, token, req, &user); err != nil {
		return nil, err
	}

	c.replaceUser(user)
	return &user, nil
}

func (c *SDKClient) replaceUser(user User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.User.ID == user.ID {
		c.session.User = user
	}
}

// SignOut ends the session locally first, so the client is signed out even
// when the server cannot be reached, then revokes it server-side. The server
// error, if any, is returned.
func (c *SDKClient) SignOut(ctx context.Context) error {
	token, err := c.accessToken()
	if err != nil {
		// Nothing to revoke, but make sure listeners see the signed-out state.
		c.clearSession(ctx)
		return nil
	}

	c.clearSession(ctx)

	query := url.Values{"scope": {"local"}}
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", query, token, nil, nil)
}

// UserExists reports whether the public users table lists email. An empty
// provider matches any provider.
func (c *SDKClient) UserExists(ctx context.Context, email, provider string) (bool, error) {
	query := url.Values{
		"select": {"email"},
		"email":  {"eq." + email},
	}
	if provider != "" {
		query.Set("provider", "eq."+provider)
	}

	var rows []DirectoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/rest/v1/users", query, "", nil, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
