// Package google obtains Google ID tokens for the login flow through the
// OAuth2 authorization code flow with a loopback redirect.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	callbackPath   = "/callback"
	defaultTimeout = 5 * time.Minute
)

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrNoIDToken     = errors.New("token response carried no id_token")
)

// Provider implements domain.CredentialProvider against Google (or any OAuth2
// server reachable through Endpoint).
type Provider struct {
	ClientID     string
	ClientSecret string

	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint
	// OpenURL presents the consent page to the user. The default prints it to Out.
	OpenURL func(ctx context.Context, url string) error
	Out     io.Writer
	Logger  *slog.Logger
	// Timeout bounds the wait for the browser to come back (default 5m).
	Timeout time.Duration
}

var _ domain.CredentialProvider = (*Provider)(nil)

type callbackResult struct {
	code string
	err  error
}

// RequestIDToken runs one consent round trip. nonceHash is forwarded as the
// nonce parameter, so the returned token's nonce claim equals it. A denied
// consent or a cancelled ctx yields domain.ErrCancelled.
func (p *Provider) RequestIDToken(ctx context.Context, nonceHash string) (string, error) {
	logger := slogx.OrDefault(p.Logger).With("component", "google")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to open loopback listener: %w", err)
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		_ = listener.Close()
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	cfg := p.config("http://" + listener.Addr().String() + callbackPath)

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           p.callbackHandler(state, results),
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("loopback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonceHash),
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.S256ChallengeOption(verifier),
	)
	if err := p.open(ctx, authURL); err != nil {
		return "", fmt.Errorf("failed to open consent page: %w", err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		logger.Info("google sign-in abandoned", "error", waitCtx.Err())
		return "", domain.ErrCancelled
	}
	if res.err != nil {
		return "", res.err
	}

	token, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}

func (p *Provider) config(redirectURL string) *oauth2.Config {
	endpoint := p.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}
}

func (p *Provider) open(ctx context.Context, url string) error {
	if p.OpenURL != nil {
		return p.OpenURL(ctx, url)
	}
	if p.Out == nil {
		return errors.New("no way to show the consent page")
	}
	_, err := fmt.Fprintf(p.Out, "Open this link to continue with Google:\n%s\n", url)
	return err
}

// callbackHandler reports the first redirect it receives and ignores the rest.
func (p *Provider) callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = ErrStateMismatch
		case q.Get("error") == "access_denied":
			res.err = domain.ErrCancelled
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization failed: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization response carried no code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, "Sign-in did not complete. You can close this window.", http.StatusBadRequest)
		} else {
			_, _ = io.WriteString(w, "Signed in. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}
