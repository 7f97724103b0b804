package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an order record is not found.
var ErrNotFound = errors.New("order not found")

// ErrAlreadyVerified is returned when verifying an order that has already
// been verified.
var ErrAlreadyVerified = errors.New("order already verified")

// Repository provides operations on the orders table.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	Verify(ctx context.Context, id, verifiedBy uuid.UUID) error
	Stats(ctx context.Context, year int, month int) (*Stats, error)
}
