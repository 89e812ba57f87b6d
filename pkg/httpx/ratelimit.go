package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/passage/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow tokens refill evenly
// over Window, and at most Burst are available at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Rate limit profiles for the emulator, overridable through
// RATELIMIT_STRICT_* and RATELIMIT_LENIENT_*.
var (
	// StrictLimit guards credential and OTP endpoints.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// LenientLimit covers reads such as the user directory and /user.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func init() {
	StrictLimit = RateLimitFromEnv("STRICT", StrictLimit)
	LenientLimit = RateLimitFromEnv("LENIENT", LenientLimit)
}

// RateLimitFromEnv overlays RATELIMIT_{name}_REQUESTS, RATELIMIT_{name}_WINDOW
// (a Go duration or plain seconds) and RATELIMIT_{name}_BURST onto def.
// Unparsable or non-positive values are ignored.
func RateLimitFromEnv(name string, def RateLimitConfig) RateLimitConfig {
	prefix := "RATELIMIT_" + name + "_"

	if n, ok := positiveInt(os.Getenv(prefix + "REQUESTS")); ok {
		def.RequestsPerWindow = n
	}
	if d, ok := window(os.Getenv(prefix + "WINDOW")); ok {
		def.Window = d
	}
	if n, ok := positiveInt(os.Getenv(prefix + "BURST")); ok {
		def.Burst = n
	}
	return def
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

func window(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if n, ok := positiveInt(s); ok {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

// KeyFunc groups requests that share a bucket. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ClientIP is the first X-Forwarded-For hop, else X-Real-IP, else the peer
// address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// idleTTL is how long an untouched bucket is kept.
const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per key and sweeps idle ones on access.
type buckets struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{cfg: cfg, visitors: make(map[string]*visitor), lastSweep: time.Now()}
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > idleTTL {
		for k, v := range b.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(b.visitors, k)
			}
		}
		b.lastSweep = now
	}

	v, ok := b.visitors[key]
	if !ok {
		every := b.cfg.Window / time.Duration(max(b.cfg.RequestsPerWindow, 1))
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), b.cfg.Burst)}
		b.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// rateLimitedBody mirrors the GoTrue error envelope.
type rateLimitedBody struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
}

// RateLimit rejects requests with 429 once the bucket for key(r) is empty.
func RateLimit(cfg RateLimitConfig, key KeyFunc) Middleware {
	b := newBuckets(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			limiter := b.get(k, now)
			if limiter.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			r2 := limiter.ReserveN(now, 1)
			retryAfter := max(int(r2.DelayFrom(now).Seconds()), 1)
			r2.CancelAt(now)

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteJSON(w, http.StatusTooManyRequests, rateLimitedBody{
				Code:      http.StatusTooManyRequests,
				ErrorCode: "over_request_rate_limit",
				Msg:       "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP limits per client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, ClientIP)
}
