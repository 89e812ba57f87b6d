package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// UserHandler serves the signed-in user's endpoints.
type UserHandler struct {
	Service *service.Service
}

// HandleGet godoc
//
//	@Summary		Current User
//	@Description	Returns the user behind the bearer token.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.User
//	@Failure		403	{object}	authsdk.ErrorResponse	"bad_jwt, session_not_found"
//	@Router			/auth/v1/user [get].
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.Service.Authenticate(r.Context(), httpx.BearerToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(*user))
}

// HandleUpdate godoc
//
//	@Summary		Update User
//	@Description	Changes the password and/or merges user metadata of the user behind the bearer token.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.UpdateUserRequest	true	"password, data"
//	@Success		200		{object}	authsdk.User
//	@Failure		403		{object}	authsdk.ErrorResponse	"bad_jwt, session_not_found"
//	@Failure		422		{object}	authsdk.ErrorResponse	"same_password, weak_password"
//	@Router			/auth/v1/user [put].
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), httpx.BearerToken(r), req.Password, req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(*user))
}

// HandleLogout godoc
//
//	@Summary		Log Out
//	@Description	Ends the session behind the bearer token and revokes its refresh tokens. Only scope=local is supported.
//	@Tags			User
//	@Security		BearerAuth
//	@Param			scope	query	string	false	"Logout scope"	Enums(local)
//	@Success		204
//	@Failure		403	{object}	authsdk.ErrorResponse	"bad_jwt, session_not_found"
//	@Router			/auth/v1/logout [post].
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if scope := r.URL.Query().Get("scope"); scope != "" && scope != "local" {
		writeError(w, r, &service.Error{
			Status:  http.StatusBadRequest,
			Code:    authsdk.ErrorCodeValidationFailed,
			Message: "Unsupported logout scope " + scope,
		})
		return
	}

	if err := h.Service.Logout(r.Context(), httpx.BearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
