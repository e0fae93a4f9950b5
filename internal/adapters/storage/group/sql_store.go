package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
)

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new group store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a group by id.
// POST: Returns the group or an error wrapping storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id int64) (domain.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, description, color, active FROM groups WHERE id = ?`, id)
	g, err := scanGroup(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	return g, err
}

// Exists reports whether a group with id is stored, active or not.
func (s *SQLStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("group exists: %w", err)
	}
	return n > 0, nil
}

// ListAll returns every group ordered by id.
func (s *SQLStore) ListAll(ctx context.Context) ([]domain.Group, error) {
	return s.list(ctx, `SELECT id, name, description, color, active FROM groups ORDER BY id`)
}

// ListActive returns the active groups ordered by id.
func (s *SQLStore) ListActive(ctx context.Context) ([]domain.Group, error) {
	return s.list(ctx, `SELECT id, name, description, color, active FROM groups WHERE active = 1 ORDER BY id`)
}

func (s *SQLStore) list(ctx context.Context, query string) ([]domain.Group, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	out := []domain.Group{}
	for rows.Next() {
		g, err := scanGroup(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create inserts a group and returns its id. An empty colour is stored as the default.
// PRE: value has been validated
func (s *SQLStore) Create(ctx context.Context, value domain.Group) (int64, error) {
	color := value.Color
	if color == "" {
		color = domain.DefaultColor
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO groups (name, description, color, active) VALUES (?, ?, ?, ?) RETURNING id`,
		value.Name, value.Description, color, storage.BoolToInt(value.Active),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}
	return id, nil
}

// Update overwrites name, description, colour and active flag.
// PRE: value has been validated
func (s *SQLStore) Update(ctx context.Context, value domain.Group) error {
	color := value.Color
	if color == "" {
		color = domain.DefaultColor
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ?, color = ?, active = ? WHERE id = ?`,
		value.Name, value.Description, color, storage.BoolToInt(value.Active), value.ID,
	)
	if err != nil {
		return fmt.Errorf("update group %d: %w", value.ID, err)
	}
	return expectRow(res, value.ID)
}

// SetActive activates or deactivates a group.
func (s *SQLStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE groups SET active = ? WHERE id = ?`, storage.BoolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set active group %d: %w", id, err)
	}
	return expectRow(res, id)
}

func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanGroup(scan func(dest ...any) error) (domain.Group, error) {
	var g domain.Group
	var active int
	if err := scan(&g.ID, &g.Name, &g.Description, &g.Color, &active); err != nil {
		return domain.Group{}, err
	}
	g.Active = active != 0
	return g, nil
}
