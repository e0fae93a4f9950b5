package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new settings store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves a setting by key.
// PRE: key is non-empty
// POST: Returns the setting or an error wrapping storage.ErrNotFound
func (s *SQLStore) Get(ctx context.Context, key string) (domain.Setting, error) {
	var v domain.Setting
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, type, description FROM settings WHERE key = ?`, key,
	).Scan(&v.Key, &v.Value, &v.Type, &v.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Setting{}, fmt.Errorf("setting %q: %w", key, storage.ErrNotFound)
	}
	return v, err
}

// List returns all settings sorted by key.
// INVARIANT: Store state is not mutated
func (s *SQLStore) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, type, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := []domain.Setting{}
	for rows.Next() {
		var v domain.Setting
		if err := rows.Scan(&v.Key, &v.Value, &v.Type, &v.Description); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Set upserts a setting.
// PRE: value passes Validate
// POST: the row for value.Key holds value
// INVARIANT: No other settings are modified
func (s *SQLStore) Set(ctx context.Context, value domain.Setting) error {
	if err := value.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, type, description) VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			type = excluded.type,
			description = excluded.description`,
		value.Key, value.Value, value.Type, value.Description,
	)
	if err != nil {
		return fmt.Errorf("save setting %q: %w", value.Key, err)
	}
	return nil
}

// EnsureDefaults inserts any missing default rows; existing values are kept.
func (s *SQLStore) EnsureDefaults(ctx context.Context, defaults []domain.Setting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range defaults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, type, description) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO NOTHING`,
			d.Key, d.Value, d.Type, d.Description,
		); err != nil {
			return fmt.Errorf("seed setting %q: %w", d.Key, err)
		}
	}
	return tx.Commit()
}
