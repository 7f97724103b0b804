package profile

import (
	"context"
	"errors"
	"fmt"

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

// Create inserts a new profile row keyed by the identity id.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO users (id, email, name, role, employee_id, position, department)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.Email,
		p.Name,
		string(p.Role),
		p.EmployeeID,
		p.Position,
		p.Department,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// GetByID retrieves the single profile matching the identity id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, email, name, role, employee_id, position, department, created_at
		FROM users
		WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a profile by its display name, case-insensitively.
// Used by handlers to enforce name uniqueness before a write.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Profile, error) {
	query := `
		SELECT id, email, name, role, employee_id, position, department, created_at
		FROM users
		WHERE LOWER(name) = LOWER($1)`

	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// List retrieves all profiles, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT id, email, name, role, employee_id, position, department, created_at
		FROM users
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		var role string
		err := rows.Scan(
			&p.ID, &p.Email, &p.Name, &role,
			&p.EmployeeID, &p.Position, &p.Department, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		p.Role = roleOrDefault(role)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	if profiles == nil {
		profiles = []Profile{}
	}

	return profiles, nil
}

// Update mutates the mutable profile fields. Last write wins; there is no
// version check on this low-frequency administrative path.
func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, employee_id = $4, position = $5, department = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		string(p.Role),
		p.EmployeeID,
		p.Position,
		p.Department,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a profile row.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Profile, error) {
	var p Profile
	var role string
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &role,
		&p.EmployeeID, &p.Position, &p.Department, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	p.Role = roleOrDefault(role)
	return &p, nil
}
