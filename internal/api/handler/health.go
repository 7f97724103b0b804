package handler

import (
	"context"
	"net/http"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
)

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"
	code := http.StatusOK
	dbStatus := "connected"

	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		dbStatus = "disconnected"
	}

	response.JSON(w, code, response.Envelope{
		Data: map[string]any{
			"status":   status,
			"version":  h.version,
			"database": dbStatus,
		},
		Meta: response.NewMeta(requestID),
	})
}
