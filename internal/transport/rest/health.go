package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/transport"
)

type HealthHandler struct {
	*transport.BaseHandler
	db      *sqlx.DB
	started time.Time
}

func NewHealthHandler(db *sqlx.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		db:          db,
		started:     time.Now(),
	}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// Health handles GET /health, reporting database reachability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "healthy"
	dbStatus := "up"
	if err := h.db.PingContext(ctx); err != nil {
		h.Logger.Error("database health check failed", "error", err)
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbStatus = "down"
	}

	h.WriteJSON(w, status, map[string]interface{}{
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.started).String(),
	})
}
