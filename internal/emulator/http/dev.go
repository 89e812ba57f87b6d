package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// MailboxEntry is one message in the emulator outbox.
type MailboxEntry struct {
	To     string    `json:"to"`
	Kind   string    `json:"kind"`
	Code   string    `json:"code"`
	SentAt time.Time `json:"sent_at"`
}

// GoogleTokenRequest asks the emulator to play Google's account picker.
type GoogleTokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Nonce string `json:"nonce,omitempty"` // already hashed
}

// GoogleTokenResponse carries a minted Google ID token.
type GoogleTokenResponse struct {
	IDToken string `json:"id_token"`
}

// DevHandler serves emulator-only endpoints with no GoTrue counterpart.
type DevHandler struct {
	Service *service.Service
}

// HandleOutbox godoc
//
//	@Summary		Read Outbox
//	@Description	Lists the emails the emulator would have sent, oldest first.
//	@Tags			Emulator
//	@Produce		json
//	@Param			email	query	string	false	"Recipient filter"
//	@Success		200		{array}	MailboxEntry
//	@Router			/emulator/v1/outbox [get].
func (h *DevHandler) HandleOutbox(w http.ResponseWriter, r *http.Request) {
	mails := h.Service.Outbox(r.URL.Query().Get("email"))
	out := make([]MailboxEntry, 0, len(mails))
	for _, m := range mails {
		out = append(out, MailboxEntry{To: m.To, Kind: string(m.Kind), Code: m.Code, SentAt: m.SentAt})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGoogleToken godoc
//
//	@Summary		Mint Google ID Token
//	@Description	Issues a Google-like ID token for email, accepted by the id_token grant. nonce must already be hashed.
//	@Tags			Emulator
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GoogleTokenRequest	true	"email, name, nonce"
//	@Success		200		{object}	GoogleTokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Router			/emulator/v1/google/token [post].
func (h *DevHandler) HandleGoogleToken(w http.ResponseWriter, r *http.Request) {
	var req GoogleTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.Service.MintGoogleIDToken(req.Email, req.Name, req.Nonce)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, GoogleTokenResponse{IDToken: token})
}
