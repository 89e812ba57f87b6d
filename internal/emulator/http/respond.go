package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// writeError renders err as a GoTrue error body. Unknown errors are logged
// and reported as unexpected_failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		se = &service.Error{
			Status:  http.StatusInternalServerError,
			Code:    authsdk.ErrorCodeUnexpected,
			Message: "Unexpected failure, please check server logs for more information",
		}
	}

	httpx.WriteJSON(w, se.Status, authsdk.ErrorResponse{
		Code:      se.Status,
		ErrorCode: se.Code,
		Msg:       se.Message,
	})
}

func badJSON(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &service.Error{
		Status:  http.StatusBadRequest,
		Code:    "bad_json",
		Message: "Could not parse request body as JSON",
	})
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		badJSON(w, r)
		return false
	}
	return true
}

func toUser(u service.User) authsdk.User {
	return authsdk.User{
		ID:    u.ID.String(),
		Email: u.Email,
		AppMetadata: authsdk.AppMetadata{
			Provider:  u.Provider,
			Providers: u.Providers,
		},
		UserMetadata:     u.Metadata,
		EmailConfirmedAt: u.ConfirmedAt,
		CreatedAt:        u.CreatedAt.UTC().Truncate(time.Second),
	}
}

func toTokenResponse(g *service.Grant) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  g.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    g.ExpiresInSeconds(),
		ExpiresAt:    g.ExpiresAt.Unix(),
		RefreshToken: g.RefreshToken,
		User:         toUser(g.User),
	}
}
