package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
)

const columns = `id, title, description, location, start_date, end_date, start_time, end_time, group_ids`

// SQLStore implements Store over SQLite or Postgres. Group ids are kept as a
// JSON array in one column.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new event store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an event by id.
// POST: Returns the event or an error wrapping storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("event %d: %w", id, storage.ErrNotFound)
	}
	return e, err
}

// List returns all events, most recent start first.
func (s *SQLStore) List(ctx context.Context) ([]domain.Event, error) {
	return s.list(ctx, `SELECT `+columns+` FROM events ORDER BY start_date DESC, start_time DESC, id DESC`)
}

// ListUpcoming returns events that have not ended before from, soonest first.
// INVARIANT: Store state is not mutated
func (s *SQLStore) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Event, error) {
	return s.list(ctx, `SELECT `+columns+` FROM events
		WHERE COALESCE(end_date, start_date) >= ?
		ORDER BY start_date, start_time, id`, from.Format("2006-01-02"))
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts an event and returns its id.
// PRE: value has been validated
func (s *SQLStore) Create(ctx context.Context, value domain.Event) (int64, error) {
	groups, err := encodeGroups(value.GroupIDs)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, location, start_date, end_date, start_time, end_time, group_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		value.Title, value.Description, value.Location,
		storage.NullDate(value.StartDate), storage.NullDate(value.EndDate),
		value.StartTime, value.EndTime, groups,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return id, nil
}

// Update overwrites an existing event.
// PRE: value has been validated
func (s *SQLStore) Update(ctx context.Context, value domain.Event) error {
	groups, err := encodeGroups(value.GroupIDs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, location = ?, start_date = ?, end_date = ?,
			start_time = ?, end_time = ?, group_ids = ?
		WHERE id = ?`,
		value.Title, value.Description, value.Location,
		storage.NullDate(value.StartDate), storage.NullDate(value.EndDate),
		value.StartTime, value.EndTime, groups, value.ID,
	)
	if err != nil {
		return fmt.Errorf("update event %d: %w", value.ID, err)
	}
	return expectRow(res, value.ID)
}

// Delete removes an event.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return expectRow(res, id)
}

func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func encodeGroups(ids []int64) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode event groups: %w", err)
	}
	return string(b), nil
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var start, end sql.NullString
	var groups string
	if err := scan(&e.ID, &e.Title, &e.Description, &e.Location, &start, &end, &e.StartTime, &e.EndTime, &groups); err != nil {
		return domain.Event{}, err
	}
	var err error
	if e.StartDate, err = storage.ParseNullDate(start); err != nil {
		return domain.Event{}, err
	}
	if e.EndDate, err = storage.ParseNullDate(end); err != nil {
		return domain.Event{}, err
	}
	if groups != "" {
		if err := json.Unmarshal([]byte(groups), &e.GroupIDs); err != nil {
			return domain.Event{}, fmt.Errorf("decode event %d groups: %w", e.ID, err)
		}
	}
	if len(e.GroupIDs) == 0 {
		e.GroupIDs = nil
	}
	return e, nil
}
