package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/pkg/idx"
)

// RequestIDHeader is read from proxies and echoed on every response.
const RequestIDHeader = "X-Request-ID"

// HTTPMiddleware puts a request-scoped logger into the request context and
// logs one line per request once the handler returns. Server errors log at
// error level.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = idx.New().String()
			}
			w.Header().Set(RequestIDHeader, reqID)

			logger := base.With("req_id", reqID, "method", r.Method, "path", r.URL.Path)
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r.WithContext(WithContext(r.Context(), logger)))

			level := slog.LevelInfo
			if rec.status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			// Supabase client libraries identify themselves in X-Client-Info.
			logger.Log(r.Context(), level, "http_request",
				"status", rec.status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_info", r.Header.Get("X-Client-Info"),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}
