package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a profile record is not found. Immediately
// after identity creation a profile may be transiently absent, so callers on
// the read path treat this as recoverable, never as authorized.
var ErrNotFound = errors.New("profile not found")

// Repository provides operations on the users table.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
}
