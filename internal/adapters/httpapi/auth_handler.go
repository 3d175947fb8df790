package httpapi

import (
	"net/http"

	"github.com/example/cts/internal/ports/primary"
)

type AuthHandler struct {
	svc primary.AuthService
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req primary.LoginRequest
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
