package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new product record.
func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO fgcodes (code, name, shelf_life)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, p.Code, p.Name, p.ShelfLife).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

// GetByCode retrieves a single product by its code.
func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*Product, error) {
	query := `
		SELECT code, name, shelf_life, created_at
		FROM fgcodes
		WHERE code = $1`

	var p Product
	err := r.pool.QueryRow(ctx, query, code).Scan(&p.Code, &p.Name, &p.ShelfLife, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}

	return &p, nil
}

// List retrieves all products, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT code, name, shelf_life, created_at
		FROM fgcodes
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Code, &p.Name, &p.ShelfLife, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	if products == nil {
		products = []Product{}
	}

	return products, nil
}

// Update mutates the name and shelf life of a product.
func (r *PostgresRepository) Update(ctx context.Context, p *Product) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE fgcodes SET name = $2, shelf_life = $3 WHERE code = $1`,
		p.Code, p.Name, p.ShelfLife)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product record.
func (r *PostgresRepository) Delete(ctx context.Context, code string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM fgcodes WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
