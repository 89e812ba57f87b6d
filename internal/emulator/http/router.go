package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/slogx"

	_ "github.com/aussiebroadwan/passage/api/emulator" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	service      *service.Service
	apiKey       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Rate limit profiles, defaulting to httpx.StrictLimit and
	// httpx.LenientLimit. Set before ApplyRoutes.
	StrictLimit  httpx.RateLimitConfig
	LenientLimit httpx.RateLimitConfig
}

// NewRouter creates a router for svc. A non-empty apiKey is required in the
// apikey header of every /auth and /rest request.
func NewRouter(svc *service.Service, apiKey, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		service:      svc,
		apiKey:       apiKey,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		StrictLimit:  httpx.StrictLimit,
		LenientLimit: httpx.LenientLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUser()
	r.registerDirectory()
	r.registerEmulator()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Passage Auth Emulator API
//	@version					0.1.0
//	@description				A GoTrue-compatible subset for offline development of the passage client.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs; their keys are published at /auth/v1/.well-known/jwks.json.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/passage
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:9999
//	@BasePath					/
//
//	@schemes					http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /token - strict rate limit by IP (covers all grant types)
	tokenHandler := &TokenHandler{Service: r.service}
	r.Mux.Handle("POST /auth/v1/token",
		httpx.Chain(tokenHandler,
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/v1/signup",
		httpx.Chain(&SignUpHandler{Service: r.service},
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)

	// Code guessing is the main threat here, so verify shares the strict profile.
	r.Mux.Handle("POST /auth/v1/verify",
		httpx.Chain(&VerifyHandler{Service: r.service},
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)

	mail := &MailHandler{Service: r.service}
	r.Mux.Handle("POST /auth/v1/recover",
		httpx.Chain(http.HandlerFunc(mail.HandleRecover),
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/v1/resend",
		httpx.Chain(http.HandlerFunc(mail.HandleResend),
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/v1/.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.service.Keys),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}

func (r *Router) registerUser() {
	h := &UserHandler{Service: r.service}

	r.Mux.Handle("GET /auth/v1/user",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.requireAPIKey,
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /auth/v1/user",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.requireAPIKey,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.requireAPIKey,
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}

func (r *Router) registerDirectory() {
	r.Mux.Handle("GET /rest/v1/users",
		httpx.Chain(&DirectoryHandler{Service: r.service},
			r.requireAPIKey,
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}

func (r *Router) registerEmulator() {
	h := &DevHandler{Service: r.service}

	r.Mux.Handle("GET /emulator/v1/outbox",
		httpx.Chain(http.HandlerFunc(h.HandleOutbox),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
	r.Mux.Handle("POST /emulator/v1/google/token",
		httpx.Chain(http.HandlerFunc(h.HandleGoogleToken),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.LenientLimit),
		),
	)
}

// requireAPIKey rejects requests whose apikey header does not match the
// configured key, the way the Supabase gateway does.
func (r *Router) requireAPIKey(next http.Handler) http.Handler {
	if r.apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got := req.Header.Get("apikey")
		if subtle.ConstantTimeCompare([]byte(got), []byte(r.apiKey)) != 1 {
			httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{
				Code: http.StatusUnauthorized,
				Msg:  "Invalid API key",
			})
			return
		}
		next.ServeHTTP(w, req)
	})
}
