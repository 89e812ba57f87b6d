package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// SignUpHandler serves POST /auth/v1/signup.
type SignUpHandler struct {
	Service *service.Service
}

// ServeHTTP godoc
//
//	@Summary		Sign Up
//	@Description	Registers an email/password user. Without autoconfirm a 6-digit code is mailed and a bare user is returned;
//	@Description	with autoconfirm the response is a full session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignUpRequest	true	"email, password, data"
//	@Success		200		{object}	authsdk.SignUpResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_failed"
//	@Failure		422		{object}	authsdk.ErrorResponse	"user_already_exists, weak_password"
//	@Router			/auth/v1/signup [post].
func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, grant, err := h.Service.SignUp(r.Context(), req.Email, req.Password, req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if grant != nil {
		httpx.WriteJSON(w, http.StatusOK, authsdk.SignUpResponse{TokenResponse: toTokenResponse(grant)})
		return
	}

	// GoTrue answers an unconfirmed signup with the user object itself.
	httpx.WriteJSON(w, http.StatusOK, toUser(*user))
}
