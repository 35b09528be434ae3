package audit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "academy/internal/domain/audit"
)

// PostgresStore implements the audit Store interface using Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Save(ctx context.Context, event domain.Event) error {
	const query = `
	INSERT INTO audit_event (` + eventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID, event.Timestamp.UTC(), string(event.Category), string(event.Action),
		string(event.Severity), event.ActorID, event.ActorEmail, event.ActorRole,
		event.ResourceID, event.ResourceType, event.Description, event.Metadata)
	if err != nil {
		return fmt.Errorf("audit save: %w", err)
	}
	return nil
}

func (r *PostgresStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_event WHERE 1=1`
	args := []any{}
	add := func(clause string, v any) {
		args = append(args, v)
		query += " AND " + clause + " $" + strconv.Itoa(len(args))
	}

	if filter.Category != nil {
		add("category =", string(*filter.Category))
	}
	if filter.Action != nil {
		add("action =", string(*filter.Action))
	}
	if filter.ActorID != nil {
		add("actor_id =", *filter.ActorID)
	}
	if filter.ResourceID != nil {
		add("resource_id =", *filter.ResourceID)
	}
	if filter.From != nil {
		add("timestamp >=", filter.From.UTC())
	}
	if filter.To != nil {
		add("timestamp <=", filter.To.UTC())
	}
	args = append(args, limit)
	query += " ORDER BY timestamp DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var category, action, severity string
		if err := rows.Scan(&e.ID, &e.Timestamp, &category, &action, &severity, &e.ActorID, &e.ActorEmail, &e.ActorRole,
			&e.ResourceID, &e.ResourceType, &e.Description, &e.Metadata); err != nil {
			return nil, err
		}
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		e.Severity = domain.Severity(severity)
		events = append(events, e)
	}
	return events, rows.Err()
}
