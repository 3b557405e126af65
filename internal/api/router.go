package api

import (
	"net/http"

	"github.com/zvidmar/inventura/internal/backup"
	"github.com/zvidmar/inventura/internal/db"
	"github.com/zvidmar/inventura/internal/store"
)

// Config carries the API layer's settings.
type Config struct {
	Policy      Policy
	UploadsDir  string
	BackupsDir  string
	StatsMonths int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(h *db.Handle, cfg Config) http.Handler {
	if cfg.StatsMonths < 1 {
		cfg.StatsMonths = store.DefaultStatsMonths
	}

	itemsHandler := &ItemsHandler{Handle: h, Policy: cfg.Policy, UploadsDir: cfg.UploadsDir}
	statsHandler := &StatsHandler{Handle: h, Months: cfg.StatsMonths}
	backupHandler := &BackupHandler{Service: &backup.Service{Handle: h, Dir: cfg.BackupsDir}}
	uploadHandler := &UploadHandler{Dir: cfg.UploadsDir}
	healthHandler := &HealthHandler{Handle: h}

	mux := http.NewServeMux()

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("PATCH /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("PUT /api/items/{id}/sold", itemsHandler.ToggleSold)
	mux.HandleFunc("PUT /api/items/{id}/payment", itemsHandler.TogglePayment)
	mux.HandleFunc("DELETE /api/items", itemsHandler.Delete)

	// Statistics.
	mux.HandleFunc("GET /api/statistics", statsHandler.Get)

	// Backups.
	mux.HandleFunc("POST /api/backup", backupHandler.Create)
	mux.HandleFunc("GET /api/backup", backupHandler.List)
	mux.HandleFunc("POST /api/backup/restore", backupHandler.Restore)

	// Uploads and health.
	mux.HandleFunc("POST /api/upload", uploadHandler.Upload)
	mux.HandleFunc("GET /api/health", healthHandler.Get)

	return mux
}
