package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/authz"
)

// Profile represents a row in the users table: the application-level record
// associated one-to-one with an identity. Display names are unique across the
// system; uniqueness is enforced by the handlers, not the store.
type Profile struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Role       authz.Role
	EmployeeID *string
	Position   *string
	Department *string
	CreatedAt  time.Time
}
