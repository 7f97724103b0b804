package audit

import (
	"context"
	"encoding/json"
	"fmt"

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

// Insert appends one audit event.
func (r *PostgresRepository) Insert(ctx context.Context, e *Event) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshaling details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, action, details, origin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.pool.Exec(ctx, query, e.ID, e.ActorID, e.Action, details, e.Origin, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

// List returns the most recent events with the actor's display name joined
// in, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT l.id, l.actor_id, u.name, l.action, l.details, l.origin, l.created_at
		FROM audit_logs l
		LEFT JOIN users u ON u.id = l.actor_id
		ORDER BY l.created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var details []byte
		err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &details, &e.Origin, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				e.Details = map[string]any{}
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}

	if events == nil {
		events = []Event{}
	}

	return events, nil
}
