package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// TokenHandler serves POST /auth/v1/token.
type TokenHandler struct {
	Service *service.Service
}

// ServeHTTP godoc
//
//	@Summary		Token Endpoint
//	@Description	Issues a session for the password, id_token and refresh_token grants.
//	@Description	The id_token grant takes the raw nonce; the ID token's nonce claim must be its SHA-256 hex digest.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			grant_type	query		string							true	"Grant type"	Enums(password, id_token, refresh_token)
//	@Param			password	body		authsdk.PasswordGrantRequest	false	"password grant"
//	@Param			id_token	body		authsdk.IDTokenGrantRequest		false	"id_token grant"
//	@Param			refresh		body		authsdk.RefreshGrantRequest		false	"refresh_token grant"
//	@Success		200			{object}	authsdk.TokenResponse
//	@Failure		400			{object}	authsdk.ErrorResponse	"invalid_credentials, email_not_confirmed, refresh_token_not_found"
//	@Failure		429			{object}	authsdk.ErrorResponse	"over_request_rate_limit"
//	@Router			/auth/v1/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		grant *service.Grant
		err   error
	)

	switch grantType := r.URL.Query().Get("grant_type"); grantType {
	case "password":
		var req authsdk.PasswordGrantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		grant, err = h.Service.SignInWithPassword(r.Context(), req.Email, req.Password)

	case "id_token":
		var req authsdk.IDTokenGrantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		grant, err = h.Service.SignInWithIDToken(r.Context(), req.Provider, req.IDToken, req.Nonce)

	case "refresh_token":
		var req authsdk.RefreshGrantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		grant, err = h.Service.Refresh(r.Context(), req.RefreshToken)

	default:
		writeError(w, r, &service.Error{
			Status:  http.StatusBadRequest,
			Code:    authsdk.ErrorCodeValidationFailed,
			Message: "unsupported_grant_type",
		})
		return
	}

	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(grant))
}
