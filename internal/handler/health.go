package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/chefserge/chefsite-go/internal/config"
)

// HealthHandler handles the liveness and database probes.
type HealthHandler struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

// Healthz handles GET /healthz: a fixed liveness response that never
// touches storage.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// healthResponse is the JSON body of the database probe.
type healthResponse struct {
	Status      string `json:"status"`
	App         string `json:"app"`
	Database    string `json:"database"`
	DatabaseURL string `json:"database_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Health handles GET /health: runs SELECT 1 against the database and
// reports the result. The DSN host is echoed without credentials.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		App:         "running",
		Database:    "connected",
		DatabaseURL: h.cfg.DatabaseHost(),
	}
	status := http.StatusOK

	var one int
	if err := h.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&one); err != nil {
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
