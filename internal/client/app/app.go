package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aussiebroadwan/passage/internal/client/backend"
	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/google"
	"github.com/aussiebroadwan/passage/internal/client/session"
	"github.com/aussiebroadwan/passage/internal/client/store/drivers/sqlite"
	httpapi "github.com/aussiebroadwan/passage/internal/emulator/http"
	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

var ErrNoAuthURL = errors.New("PASSAGE_AUTH_URL is required unless PASSAGE_EMULATOR is set")

// Application is the terminal client with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store        *sqlite.Store
	sdk          *authsdk.SDKClient
	backend      *backend.Backend
	bootstrapper *session.Bootstrapper
	listener     *session.Listener
	shell        *Shell

	// Set in emulator mode only.
	emulator       *service.Service
	emulatorServer *http.Server
	emulatorLn     net.Listener
}

// New creates a new Application reading commands from in and writing
// screens to out. Logs go to stderr.
func New(cfg Config, in io.Reader, out io.Writer) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "passage",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  os.Stderr,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	baseURL, credentials, err := app.initAuthServer(out)
	if err != nil {
		_ = app.store.Close()
		return nil, err
	}

	app.initServices(baseURL, credentials, in, out)
	return app, nil
}

// Run starts the client and blocks until the user quits or a shutdown
// signal arrives.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.emulatorServer != nil {
		go func() {
			if err := app.emulatorServer.Serve(app.emulatorLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("emulator server failed", "error", err)
			}
		}()
	}

	app.logger.Info("passage starting",
		"version", BuildVersion,
		"auth_url", app.sdk.BaseURL,
		"emulator", app.cfg.Emulator,
	)

	app.listener.Start()
	app.sdk.Start(ctx)

	start, err := app.bootstrapper.Run(ctx)
	if err == nil {
		err = app.shell.Run(ctx, start)
	}

	shutdownErr := app.Shutdown()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}
	return nil
}

// Shutdown stops background workers and closes the local store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down passage...")

	app.listener.Stop()
	_ = app.sdk.Close()

	if app.emulatorServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
		defer cancel()

		if err := app.emulatorServer.Shutdown(ctx); err != nil {
			app.logger.Error("graceful emulator shutdown failed", "error", err)
			_ = app.emulatorServer.Close()
		}
	}

	if err := app.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	app.logger.Info("passage stopped")
	return nil
}

// initStore opens the local database and applies migrations.
func (app *Application) initStore() error {
	if app.cfg.DataFile != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(app.cfg.DataFile), 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := sqlite.NewStore(app.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	app.logger.Info("applying database migrations...")
	if err := store.ApplyMigrations(); err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.store = store
	return nil
}

// initAuthServer resolves the auth server URL and the Google credential
// source, starting an in-process emulator when configured.
func (app *Application) initAuthServer(out io.Writer) (string, domain.CredentialProvider, error) {
	if app.cfg.Emulator {
		return app.initEmulator()
	}

	if app.cfg.AuthURL == "" {
		return "", nil, ErrNoAuthURL
	}

	var credentials domain.CredentialProvider
	if app.cfg.GoogleClientID != "" {
		credentials = &google.Provider{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			Out:          out,
			Logger:       app.logger,
		}
	}
	return app.cfg.AuthURL, credentials, nil
}

// initEmulator binds a loopback port so the issuer can name it, then builds
// the emulator behind it. The server starts serving in Run.
func (app *Application) initEmulator() (string, domain.CredentialProvider, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to bind emulator: %w", err)
	}
	baseURL := "http://" + ln.Addr().String()

	logger := app.logger.With("component", "emulator")
	svc, err := service.New(service.Config{Issuer: baseURL + "/auth/v1"}, logger)
	if err != nil {
		_ = ln.Close()
		return "", nil, fmt.Errorf("failed to initialize emulator: %w", err)
	}

	router := httpapi.NewRouter(svc, app.cfg.APIKey, BuildVersion, logger)
	router.ApplyRoutes()

	app.emulator = svc
	app.emulatorLn = ln
	app.emulatorServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	credentials := &service.CredentialIssuer{
		Service: svc,
		Email:   app.cfg.EmulatorGoogleEmail,
		Name:    "Google User",
	}
	return baseURL, credentials, nil
}

// initServices wires the SDK, the backend adapter and the navigator.
func (app *Application) initServices(baseURL string, credentials domain.CredentialProvider, in io.Reader, out io.Writer) {
	app.sdk = authsdk.NewSDKClient(baseURL, app.cfg.APIKey)
	app.sdk.Logger = app.logger
	app.sdk.Storage = backend.NewSessionStorage(app.store.Sessions())

	app.backend = backend.New(app.sdk, app.logger)
	app.bootstrapper = session.NewBootstrapper(app.backend, app.store.Flags(), app.logger)

	app.shell = NewShell(app.backend, app.store.Flags(), credentials, in, out, app.logger)
	if app.emulator != nil {
		app.shell.Mailbox = emulatorMailbox(app.emulator)
	}

	app.listener = session.NewListener(app.backend, app.logger)
	app.listener.OnNotify = app.shell.Notify
}

// emulatorMailbox reads codes straight from the emulator outbox.
func emulatorMailbox(svc *service.Service) Mailbox {
	return func(email string, purpose domain.OTPPurpose) (string, bool) {
		kind := service.MailSignup
		if purpose == domain.PurposeReset {
			kind = service.MailRecovery
		}
		return svc.LatestCode(email, kind)
	}
}
