package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/settings"
)

// SettingsHandler serves the singleton settings values.
type SettingsHandler struct {
	Settings *settings.Service
	Log      *zap.Logger
}

func (h *SettingsHandler) GetSms(w http.ResponseWriter, r *http.Request) {
	v, err := h.Settings.SmsSettings(r.Context())
	if err != nil {
		h.Log.Error("failed to read sms settings", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *SettingsHandler) PutSms(w http.ResponseWriter, r *http.Request) {
	var v models.SmsSettings
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Settings.SetSmsSettings(r.Context(), v); err != nil {
		h.Log.Error("failed to save sms settings", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutAdminKey replaces the admin registration key. The current key must be
// supplied for confirmation; neither value is ever logged.
func (h *SettingsHandler) PutAdminKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentKey string `json:"currentKey"`
		NewKey     string `json:"newKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewKey == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !h.Settings.VerifyAdminKey(r.Context(), req.CurrentKey) {
		http.Error(w, "admin key mismatch", http.StatusForbidden)
		return
	}
	if err := h.Settings.SetAdminKey(r.Context(), req.NewKey); err != nil {
		h.Log.Error("failed to save admin key", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	h.getLogo(w, r, h.Settings.AppLogo)
}

func (h *SettingsHandler) PutLogo(w http.ResponseWriter, r *http.Request) {
	h.putLogo(w, r, h.Settings.SetAppLogo)
}

func (h *SettingsHandler) GetSplashLogo(w http.ResponseWriter, r *http.Request) {
	h.getLogo(w, r, h.Settings.SplashLogo)
}

func (h *SettingsHandler) PutSplashLogo(w http.ResponseWriter, r *http.Request) {
	h.putLogo(w, r, h.Settings.SetSplashLogo)
}

func (h *SettingsHandler) getLogo(w http.ResponseWriter, r *http.Request, read func(context.Context) (string, error)) {
	logo, err := read(r.Context())
	if err != nil {
		h.Log.Error("failed to read logo", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logo": logo})
}

// putLogo accepts {"logo": "..."}; an empty logo resets to the default.
func (h *SettingsHandler) putLogo(w http.ResponseWriter, r *http.Request, write func(context.Context, string) error) {
	var req struct {
		Logo string `json:"logo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := write(r.Context(), req.Logo); err != nil {
		h.Log.Error("failed to save logo", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
