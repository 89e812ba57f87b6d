package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// VerifyHandler serves POST /auth/v1/verify.
type VerifyHandler struct {
	Service *service.Service
}

// ServeHTTP godoc
//
//	@Summary		Verify One-Time Code
//	@Description	Checks an emailed code. signup and email codes confirm the address, recovery codes allow a password change.
//	@Description	Every successful verification returns a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"type, email, token"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"otp_expired"
//	@Router			/auth/v1/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	grant, err := h.Service.Verify(r.Context(), string(req.Type), req.Email, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(grant))
}

// MailHandler serves the endpoints that (re-)send emailed codes.
type MailHandler struct {
	Service *service.Service
}

// HandleRecover godoc
//
//	@Summary		Request Password Recovery
//	@Description	Mails a recovery code when the address belongs to an email user. Always answers 200.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RecoverRequest	true	"email"
//	@Success		200		{object}	object
//	@Router			/auth/v1/recover [post].
func (h *MailHandler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RecoverRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Service.Recover(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleResend godoc
//
//	@Summary		Resend Confirmation
//	@Description	Re-sends the signup code of an unconfirmed user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResendRequest	true	"type, email"
//	@Success		200		{object}	object
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_failed"
//	@Router			/auth/v1/resend [post].
func (h *MailHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Type != authsdk.OTPTypeSignup {
		writeError(w, r, &service.Error{
			Status:  http.StatusBadRequest,
			Code:    authsdk.ErrorCodeValidationFailed,
			Message: "Missing one of these types: signup, email_change, sms, phone_change",
		})
		return
	}

	if err := h.Service.ResendSignup(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
