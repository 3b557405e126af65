package api

import (
	"database/sql"
	"net/http"

	"github.com/zvidmar/inventura/internal/db"
	"github.com/zvidmar/inventura/internal/model"
	"github.com/zvidmar/inventura/internal/store"
)

// StatsHandler handles the statistics endpoint.
type StatsHandler struct {
	Handle *db.Handle
	Months int
}

// Get handles GET /api/statistics.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var stats *model.Statistics
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		stats, err = store.ComputeStatistics(r.Context(), sdb, h.Months)
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	jsonResponse(w, http.StatusOK, stats)
}
