package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness check returning status, uptime and version. Always 200 while the emulator runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}

// JWKSHandler godoc
//
//	@Summary		JSON Web Key Set
//	@Description	Public keys that verify emulator access tokens (EdDSA).
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/auth/v1/.well-known/jwks.json [get].
func JWKSHandler(keys func() jwtx.JWKS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=600")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(keys())
	}
}
