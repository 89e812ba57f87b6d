// Package emulatortest starts an auth emulator on an httptest server.
package emulatortest

import (
	"net/http/httptest"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/passage/internal/emulator/http"
	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// APIKey is the anon key the test server expects.
const APIKey = "test-anon-key"

// Unlimited disables rate limiting for tests that hammer one endpoint.
var Unlimited = httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Second, Burst: 1_000_000}

// Server is a running emulator.
type Server struct {
	*httptest.Server
	Service *service.Service
}

// New starts an emulator with cfg and stops it when the test ends. The
// issuer is filled in from the server URL when empty.
func New(t testing.TB, cfg service.Config) *Server {
	t.Helper()

	srv := httptest.NewUnstartedServer(nil)
	if cfg.Issuer == "" {
		cfg.Issuer = "http://" + srv.Listener.Addr().String() + "/auth/v1"
	}

	svc, err := service.New(cfg, slogx.Discard())
	require.NoError(t, err)

	router := httpapi.NewRouter(svc, APIKey, "test", slogx.Discard())
	router.StrictLimit = Unlimited
	router.LenientLimit = Unlimited
	router.ApplyRoutes()

	srv.Config.Handler = router
	srv.Start()
	t.Cleanup(srv.Close)

	return &Server{Server: srv, Service: svc}
}
