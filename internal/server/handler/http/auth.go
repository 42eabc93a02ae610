package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spincity/backoffice/internal/session"
)

// AuthHandler handles login, logout and session inspection.
type AuthHandler struct {
	Session *session.Bootstrapper
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the stored user records. The comparison is
// the legacy plain-text one; a mismatch is reported to the caller and the
// submitted credentials are never logged.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session and the persisted current-user pointer.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// State reports the bootstrapper state and the current user, if any.
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"state": h.Session.State().String()}
	if user := h.Session.CurrentUser(); user != nil {
		user.Password = ""
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}
