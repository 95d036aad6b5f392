package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthController answers the passive health probe: a trivial query against
// the persistence substrate plus a timestamp.
type HealthController struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewHealthController(db *sql.DB, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

func (c *HealthController) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var one int
	if err := c.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&one); err != nil {
		c.logger.Error("healthz", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"message": "database unavailable",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
