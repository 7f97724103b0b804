package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the accounts table. It is the identity-layer
// record; the application-level profile lives in the profile package.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the verified caller resolved from a credential. It is stored in
// the request context after authentication and never carries a role: roles
// are always looked up from the profile store.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
