package authsdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/passage/pkg/slogx"
)

const clientInfo = "passage-authsdk/1"

// Defaults applied by NewSDKClient.
const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultRefreshMargin   = 30 * time.Second
	DefaultResendCooldown  = 60 * time.Second
)

// SDKClient is a client for a GoTrue-compatible auth service. It keeps the
// current session, persists it through Storage and publishes every session
// status transition to subscribers.
type SDKClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	// Storage persists the session across process restarts. Defaults to an
	// in-memory store.
	Storage SessionStorage

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// RefreshInterval is how often the background loop checks expiry.
	RefreshInterval time.Duration

	// RefreshMargin refreshes the session once it is this close to expiry.
	RefreshMargin time.Duration

	// ResendCooldown is the minimum gap between two confirmation resends.
	ResendCooldown time.Duration

	mu      sync.RWMutex
	session *Session
	epoch   uint64 // bumped on every install or clear

	// writeMu orders session writes with their storage side effects.
	writeMu sync.Mutex

	hub        *statusHub
	resendOnce sync.Once
	resend     *rate.Limiter

	startOnce sync.Once
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSDKClient creates a client in the Initializing state. Call Start to load
// the persisted session and begin background refresh.
func NewSDKClient(baseURL, apiKey string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Storage:         NewMemoryStorage(),
		RefreshInterval: DefaultRefreshInterval,
		RefreshMargin:   DefaultRefreshMargin,
		ResendCooldown:  DefaultResendCooldown,
		hub:             newStatusHub(),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

func (c *SDKClient) logger() *slog.Logger {
	return slogx.OrDefault(c.Logger).With("component", "authsdk")
}

// Start restores the persisted session and launches the refresh loop. The
// status leaves Initializing before Start returns. Subsequent calls are no-ops.
func (c *SDKClient) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.restore(ctx)
		go c.refreshLoop()
	})
}

// restore loads the persisted session and settles the initial status.
func (c *SDKClient) restore(ctx context.Context) {
	stored, err := c.Storage.LoadSession(ctx)
	if err != nil {
		c.logger().Warn("failed to load persisted session", "error", err)
	}
	if stored == nil {
		c.hub.publish(Status{Kind: StatusNotAuthenticated})
		return
	}

	c.writeMu.Lock()
	c.mu.Lock()
	c.session = stored
	c.epoch++
	c.mu.Unlock()
	c.writeMu.Unlock()

	if stored.ExpiresWithin(c.RefreshMargin) {
		_ = c.RefreshSession(ctx)
		return
	}

	s := *stored
	c.hub.publish(Status{Kind: StatusAuthenticated, Session: &s})
}

// Close stops the refresh loop and closes every subscription channel.
func (c *SDKClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)

		started := true
		c.startOnce.Do(func() { started = false })
		if started {
			<-c.doneCh
		}
		c.hub.close()
	})
	return nil
}

// CurrentSession returns a copy of the active session, or nil.
func (c *SDKClient) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Status returns the latest session status.
func (c *SDKClient) Status() Status {
	return c.hub.latest()
}

// Subscribe returns a channel that first receives the latest status and then
// every transition. The cancel func is idempotent. A slow subscriber loses the
// oldest pending statuses, never the newest.
func (c *SDKClient) Subscribe() (<-chan Status, func()) {
	return c.hub.subscribe()
}

// sessionEpoch identifies the current session for a later installSession or
// clearSessionIf.
func (c *SDKClient) sessionEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// installSession stores and persists s, then publishes Authenticated. It
// returns ErrSessionChanged without side effects when the session was
// installed or cleared after epoch was read.
func (c *SDKClient) installSession(ctx context.Context, epoch uint64, s *Session) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger().Info("discarding session from a superseded request")
		return ErrSessionChanged
	}
	c.session = s
	c.epoch++
	c.mu.Unlock()

	if err := c.Storage.SaveSession(ctx, s); err != nil {
		c.logger().Warn("failed to persist session", "error", err)
	}

	cp := *s
	c.hub.publish(Status{Kind: StatusAuthenticated, Session: &cp})
	return nil
}

// clearSession drops the local session and publishes NotAuthenticated.
func (c *SDKClient) clearSession(ctx context.Context) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.session = nil
	c.epoch++
	c.mu.Unlock()

	c.dropPersisted(ctx)
}

// clearSessionIf clears the session only if it is still the one seen at
// epoch.
func (c *SDKClient) clearSessionIf(ctx context.Context, epoch uint64) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.epoch++
	c.mu.Unlock()

	c.dropPersisted(ctx)
}

func (c *SDKClient) dropPersisted(ctx context.Context) {
	if err := c.Storage.RemoveSession(ctx); err != nil {
		c.logger().Warn("failed to remove persisted session", "error", err)
	}

	c.hub.publish(Status{Kind: StatusNotAuthenticated})
}

// closed reports whether Close has been called.
func (c *SDKClient) closed() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// accessToken returns the current access token or ErrNoSession.
func (c *SDKClient) accessToken() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return "", ErrNoSession
	}
	return c.session.AccessToken, nil
}

func (c *SDKClient) resendLimiter() *rate.Limiter {
	c.resendOnce.Do(func() {
		if c.ResendCooldown <= 0 {
			c.resend = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.resend = rate.NewLimiter(rate.Every(c.ResendCooldown), 1)
	})
	return c.resend
}
