package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/zvidmar/inventura/internal/backup"
)

// BackupHandler handles backup creation, listing, and restore.
type BackupHandler struct {
	Service *backup.Service
}

type restoreRequest struct {
	Filename string `json:"filename"`
}

// Create handles POST /api/backup.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Create(r.Context())
	if err != nil {
		slog.Error("backup failed", "error", err)
		jsonResponse(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "failed to create backup",
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "backup created",
		"details": result,
	})
}

// List handles GET /api/backup.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "success",
		"backups": h.Service.List(),
	})
}

// Restore handles POST /api/backup/restore. The failure message
// distinguishes a restore that was rolled back to the pre-restore safety
// copy from one that could not copy the backup file at all.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeJSON(r, &req); err != nil {
		restoreError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		restoreError(w, http.StatusBadRequest, "filename is required")
		return
	}

	err := h.Service.Restore(r.Context(), req.Filename)
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "database restored successfully",
		})
	case errors.Is(err, backup.ErrInvalidName):
		restoreError(w, http.StatusBadRequest, "invalid backup filename")
	case errors.Is(err, backup.ErrNotFound):
		restoreError(w, http.StatusNotFound, "backup not found")
	case errors.Is(err, backup.ErrInaccessible):
		restoreError(w, http.StatusForbidden, "cannot access required files")
	default:
		slog.Error("restore failed", "backup", req.Filename, "error", err)
		restoreError(w, http.StatusInternalServerError, err.Error())
	}
}

func restoreError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{
		"status":  "error",
		"message": message,
	})
}
