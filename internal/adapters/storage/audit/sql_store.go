package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
)

// timestampLayout is fixed-width so timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

const selectColumns = `SELECT id, timestamp, category, action, actor_id, actor_email, resource_type, resource_id, description, ip_address FROM audit_event`

// SQLStore implements the audit Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new audit event store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save persists an audit event.
// PRE: event passes Validate
// POST: Event is persisted
func (s *SQLStore) Save(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, actor_id, actor_email, resource_type, resource_id, description, ip_address)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC().Format(timestampLayout), string(event.Category), string(event.Action),
		event.ActorID, event.ActorEmail, event.ResourceType, event.ResourceID, event.Description, event.IPAddress)
	if err != nil {
		return fmt.Errorf("save audit event: %w", err)
	}
	return nil
}

// List returns audit events with optional filtering.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
// INVARIANT: Store state is not mutated
func (s *SQLStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []any{}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filter.ActorID)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC().Format(timestampLayout))
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var (
			e  domain.Event
			ts sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.ActorID, &e.ActorEmail,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress); err != nil {
			return nil, err
		}
		if e.Timestamp, err = storage.ParseTimestamp(ts); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
