package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/audit"
)

const defaultLogLimit = 200

type auditEventResponse struct {
	ID        string         `json:"id"`
	ActorID   string         `json:"actorId"`
	ActorName *string        `json:"actorName,omitempty"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Origin    string         `json:"origin,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// LogHandler serves the audit trail. Route-gated to the moderator tier.
type LogHandler struct {
	audit *audit.Recorder
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(recorder *audit.Recorder) *LogHandler {
	return &LogHandler{audit: recorder}
}

// List handles GET /logs, newest first.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.audit.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list audit events", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list audit events", requestID)
		return
	}

	items := make([]auditEventResponse, 0, len(events))
	for i := range events {
		items = append(items, toAuditEventResponse(&events[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

func toAuditEventResponse(e *audit.Event) auditEventResponse {
	return auditEventResponse{
		ID:        e.ID,
		ActorID:   e.ActorID.String(),
		ActorName: e.ActorName,
		Action:    e.Action,
		Details:   e.Details,
		Origin:    e.Origin,
		CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
