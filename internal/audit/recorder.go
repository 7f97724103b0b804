package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Recorder appends audit events with at-most-once, best-effort semantics.
// A failed append is logged locally and swallowed: it must never abort or
// roll back the action it describes.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a Recorder writing through the given repository.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one event describing an action by actorID. Origin is the
// network origin of the request, if known.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action string, details map[string]any, origin string) {
	if details == nil {
		details = map[string]any{}
	}
	e := &Event{
		ID:        ulid.Make().String(),
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		slog.Warn("audit append failed", "action", action, "actorId", actorID, "error", err)
	}
}

// List returns the most recent events, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]Event, error) {
	return r.repo.List(ctx, limit)
}
