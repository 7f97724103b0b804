package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action tags written by the handlers. Unrecognized tags are stored and
// listed as-is, never rejected.
const (
	ActionLogin         = "LOGIN"
	ActionCreateProduct = "CREATE_PRODUCT"
	ActionUpdateProduct = "UPDATE_PRODUCT"
	ActionDeleteProduct = "DELETE_PRODUCT"
	ActionCreateOrder   = "CREATE_ORDER"
	ActionVerifyOrder   = "VERIFY_ORDER"
	ActionUpdateOrder   = "UPDATE_ORDER"
	ActionDeleteOrder   = "DELETE_ORDER"
	ActionCreateUser    = "CREATE_USER"
	ActionUpdateUser    = "UPDATE_USER"
	ActionDeleteUser    = "DELETE_USER"
	ActionSetPassword   = "SET_PASSWORD"
)

// Event is an append-only record of who did what. Events are never updated
// or deleted.
type Event struct {
	ID        string
	ActorID   uuid.UUID
	ActorName *string
	Action    string
	Details   map[string]any
	Origin    string
	CreatedAt time.Time
}

// Repository provides append and read access to the audit_logs table.
type Repository interface {
	Insert(ctx context.Context, e *Event) error
	List(ctx context.Context, limit int) ([]Event, error)
}
