package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product record is not found.
var ErrNotFound = errors.New("product not found")

// ErrDuplicateCode is returned when a product with the same code already exists.
var ErrDuplicateCode = errors.New("product code already exists")

// Repository provides CRUD operations on the fgcodes table.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, code string) error
}
