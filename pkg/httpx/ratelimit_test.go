package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitByIPRejectsAfterBurst(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Chain(ok, RateLimitByIP(cfg))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/v1/otp", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, do("10.0.0.1"))
	require.Equal(t, http.StatusNoContent, do("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// Other clients keep their own bucket
	require.Equal(t, http.StatusNoContent, do("10.0.0.2"))
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	require.Equal(t, "10.0.0.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.4")
	require.Equal(t, "198.51.100.4", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestEmptyKeySkipsLimiting(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), RateLimit(cfg, func(*http.Request) string { return "" }))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRateLimitFromEnv(t *testing.T) {
	def := RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
	t.Setenv("RATELIMIT_TEST_WINDOW", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")
	require.Equal(t, RateLimitConfig{RequestsPerWindow: 50, Window: 30 * time.Second, Burst: 5}, RateLimitFromEnv("TEST", def))

	t.Setenv("RATELIMIT_TEST_WINDOW", "2m")
	require.Equal(t, 2*time.Minute, RateLimitFromEnv("TEST", def).Window)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/v1/user", nil)
	require.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def")
	require.Equal(t, "abc.def", BearerToken(req))

	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	require.Empty(t, BearerToken(req))
}
