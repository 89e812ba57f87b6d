package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/passage/internal/emulator/service"
	"github.com/aussiebroadwan/passage/pkg/authsdk"
	"github.com/aussiebroadwan/passage/pkg/httpx"
)

// DirectoryHandler serves GET /rest/v1/users, the PostgREST view of public
// user rows. Only eq. filters on email and provider are understood.
type DirectoryHandler struct {
	Service *service.Service
}

// ServeHTTP godoc
//
//	@Summary		User Directory
//	@Description	PostgREST-style lookup of the public users table, e.g. ?select=email&email=eq.a@b.co&provider=eq.email
//	@Tags			Directory
//	@Produce		json
//	@Param			select		query	string	false	"Columns"	default(email)
//	@Param			email		query	string	true	"eq.<email>"
//	@Param			provider	query	string	false	"eq.<provider>"
//	@Success		200			{array}	authsdk.DirectoryEntry
//	@Failure		400			{object}	authsdk.ErrorResponse
//	@Router			/rest/v1/users [get].
func (h *DirectoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	email, ok := eqFilter(q.Get("email"))
	if !ok || email == "" {
		writeError(w, r, &service.Error{
			Status:  http.StatusBadRequest,
			Code:    "PGRST100",
			Message: "failed to parse filter (email)",
		})
		return
	}

	provider, ok := eqFilter(q.Get("provider"))
	if !ok {
		writeError(w, r, &service.Error{
			Status:  http.StatusBadRequest,
			Code:    "PGRST100",
			Message: "failed to parse filter (provider)",
		})
		return
	}

	users, err := h.Service.Directory(r.Context(), email, provider)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := make([]authsdk.DirectoryEntry, 0, len(users))
	for _, u := range users {
		row := authsdk.DirectoryEntry{Email: u.Email}
		if strings.Contains(q.Get("select"), "provider") {
			row.Provider = u.Provider
		}
		rows = append(rows, row)
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// eqFilter unwraps a PostgREST "eq.<value>" filter. An absent filter is valid
// and yields "".
func eqFilter(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}
	v, ok := strings.CutPrefix(raw, "eq.")
	return v, ok
}
