package api

import (
	"database/sql"
	"net/http"

	"github.com/zvidmar/inventura/internal/db"
)

// HealthHandler reports store connectivity.
type HealthHandler struct {
	Handle *db.Handle
}

// Get handles GET /api/health: 200 when a trivial query succeeds against
// the live database, 500 otherwise.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	err := h.Handle.View(func(sdb *sql.DB) error {
		var one int
		return sdb.QueryRowContext(r.Context(), "SELECT 1").Scan(&one)
	})
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"status":  "unhealthy",
			"message": "database connection failed",
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "database connection successful",
	})
}
