package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const orderColumns = `
	id, order_date, order_type, lot_number, product_code, product_name,
	shelf_life, production_date, expiry_date, quantity, notes,
	created_by, created_by_dept, verified, verified_by, verified_at, created_at`

// Create inserts a new order record.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (
			id, order_date, order_type, lot_number, product_code, product_name,
			shelf_life, production_date, expiry_date, quantity, notes,
			created_by, created_by_dept
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		o.ID, o.OrderDate, o.OrderType, o.LotNumber, o.ProductCode, o.ProductName,
		o.ShelfLife, o.ProductionDate, o.ExpiryDate, o.Quantity, o.Notes,
		o.CreatedBy, o.CreatedByDept,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

// GetByID retrieves a single order by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderDate, &o.OrderType, &o.LotNumber, &o.ProductCode, &o.ProductName,
		&o.ShelfLife, &o.ProductionDate, &o.ExpiryDate, &o.Quantity, &o.Notes,
		&o.CreatedBy, &o.CreatedByDept, &o.Verified, &o.VerifiedBy, &o.VerifiedAt, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying order: %w", err)
	}

	return &o, nil
}

// List retrieves all orders, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID, &o.OrderDate, &o.OrderType, &o.LotNumber, &o.ProductCode, &o.ProductName,
			&o.ShelfLife, &o.ProductionDate, &o.ExpiryDate, &o.Quantity, &o.Notes,
			&o.CreatedBy, &o.CreatedByDept, &o.Verified, &o.VerifiedBy, &o.VerifiedAt, &o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	if orders == nil {
		orders = []Order{}
	}

	return orders, nil
}

// Update mutates the editable order fields. Last write wins.
func (r *PostgresRepository) Update(ctx context.Context, o *Order) error {
	query := `
		UPDATE orders
		SET lot_number = $2, quantity = $3, notes = $4, order_type = $5
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, o.ID, o.LotNumber, o.Quantity, o.Notes, o.OrderType)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an order record.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Verify marks an order verified exactly once.
func (r *PostgresRepository) Verify(ctx context.Context, id, verifiedBy uuid.UUID) error {
	query := `
		UPDATE orders
		SET verified = TRUE, verified_by = $2, verified_at = NOW()
		WHERE id = $1 AND verified = FALSE`

	result, err := r.pool.Exec(ctx, query, id, verifiedBy)
	if err != nil {
		return fmt.Errorf("verifying order: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking order existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyVerified
	}

	return nil
}

// Stats aggregates orders within the given calendar month.
func (r *PostgresRepository) Stats(ctx context.Context, year int, month int) (*Stats, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	stats := &Stats{}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2`,
		start, end).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}

	stats.ByDepartment, err = r.countBy(ctx, "created_by_dept", start, end)
	if err != nil {
		return nil, err
	}
	stats.ByProduct, err = r.countBy(ctx, "product_name", start, end)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *PostgresRepository) countBy(ctx context.Context, column string, start, end time.Time) ([]CountRow, error) {
	// column is one of two fixed identifiers above, never user input.
	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(%s, ''), 'Unknown'), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 2 DESC`, column)

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating orders by %s: %w", column, err)
	}
	defer rows.Close()

	var counts []CountRow
	for rows.Next() {
		var c CountRow
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}

	if counts == nil {
		counts = []CountRow{}
	}

	return counts, nil
}
