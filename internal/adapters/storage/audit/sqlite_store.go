package audit

import (
	"context"
	"database/sql"
	"fmt"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/audit"
)

const eventColumns = `id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description, metadata`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, storage.FormatTime(event.Timestamp), string(event.Category), string(event.Action),
		string(event.Severity), event.ActorID, event.ActorEmail, event.ActorRole,
		event.ResourceID, event.ResourceType, event.Description, event.Metadata)
	if err != nil {
		return fmt.Errorf("audit save: %w", err)
	}
	return nil
}

// List returns audit events with optional filtering.
// PRE: limit > 0
// POST: events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM audit_event WHERE 1=1`
	args := []any{}

	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.Action != nil {
		query += " AND action = ?"
		args = append(args, string(*filter.Action))
	}
	if filter.ActorID != nil {
		query += " AND actor_id = ?"
		args = append(args, *filter.ActorID)
	}
	if filter.ResourceID != nil {
		query += " AND resource_id = ?"
		args = append(args, *filter.ResourceID)
	}
	if filter.From != nil {
		query += " AND timestamp >= ?"
		args = append(args, storage.FormatTime(*filter.From))
	}
	if filter.To != nil {
		query += " AND timestamp <= ?"
		args = append(args, storage.FormatTime(*filter.To))
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts sql.NullString
		var category, action, severity string
		if err := rows.Scan(&e.ID, &ts, &category, &action, &severity, &e.ActorID, &e.ActorEmail, &e.ActorRole,
			&e.ResourceID, &e.ResourceType, &e.Description, &e.Metadata); err != nil {
			return nil, err
		}
		e.Timestamp = storage.ParseTime(ts)
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		e.Severity = domain.Severity(severity)
		events = append(events, e)
	}
	return events, rows.Err()
}
