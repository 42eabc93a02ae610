package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/service"
	"github.com/spincity/backoffice/internal/settings"
)

// BackupHandler serves whole-dataset export and restore.
type BackupHandler struct {
	Backup   *service.BackupService
	Settings *settings.Service
	Log      *zap.Logger
}

// Export streams the current dataset as one JSON snapshot.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Backup.Export(r.Context())
	if err != nil {
		h.Log.Error("backup export failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="backup.json"`)
	_, _ = w.Write([]byte(payload))
}

// RestoreRequest carries the snapshot plus the admin key confirming the
// destructive replacement.
type RestoreRequest struct {
	AdminKey string `json:"adminKey"`
	Payload  string `json:"payload"`
}

// Restore validates and imports a snapshot. Validation failures perform zero
// writes and are reported with a message; the caller must force a full
// reload on success.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !h.Settings.VerifyAdminKey(r.Context(), req.AdminKey) {
		http.Error(w, "admin key mismatch", http.StatusForbidden)
		return
	}

	result := h.Backup.Import(r.Context(), req.Payload)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
