package leiding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

const columns = `id, first_name, last_name, birth_date, work, studies, is_team_lead,
	is_head_staff, group_id, tenure_start, experience, about, photo_url, active`

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new leiding store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a leiding by id.
// PRE: id > 0
// POST: Returns the record or an error wrapping storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id int64) (domain.Leiding, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM leiding WHERE id = ?`, id)
	l, err := scanLeiding(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Leiding{}, fmt.Errorf("leiding %d: %w", id, storage.ErrNotFound)
	}
	return l, err
}

// ListAll returns every leiding ordered by id.
// INVARIANT: Store state is not mutated
func (s *SQLStore) ListAll(ctx context.Context) ([]domain.Leiding, error) {
	return s.list(ctx, `SELECT `+columns+` FROM leiding ORDER BY id`)
}

// ListActive returns active leiding ordered by id.
func (s *SQLStore) ListActive(ctx context.Context) ([]domain.Leiding, error) {
	return s.list(ctx, `SELECT `+columns+` FROM leiding WHERE active = 1 ORDER BY id`)
}

// ListInactive returns disabled leiding ordered by id.
func (s *SQLStore) ListInactive(ctx context.Context) ([]domain.Leiding, error) {
	return s.list(ctx, `SELECT `+columns+` FROM leiding WHERE active = 0 ORDER BY id`)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]domain.Leiding, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leiding: %w", err)
	}
	defer rows.Close()

	out := []domain.Leiding{}
	for rows.Next() {
		l, err := scanLeiding(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create inserts a leiding and returns its generated id.
// PRE: value has been validated
// POST: a new row exists; value.ID is ignored
func (s *SQLStore) Create(ctx context.Context, value domain.Leiding) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO leiding (first_name, last_name, birth_date, work, studies, is_team_lead,
			is_head_staff, group_id, tenure_start, experience, about, photo_url, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		value.FirstName,
		value.LastName,
		storage.NullDate(value.BirthDate),
		value.Work,
		value.Studies,
		storage.BoolToInt(value.IsTeamLead),
		storage.BoolToInt(value.IsHeadStaff),
		storage.NullInt64(value.GroupID),
		storage.NullDate(value.TenureStart),
		value.Experience,
		value.About,
		value.PhotoURL,
		storage.BoolToInt(value.Active),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create leiding: %w", err)
	}
	return id, nil
}

// Update overwrites every field of an existing leiding.
// PRE: value.ID refers to an existing row
// POST: row matches value, or an error wrapping storage.ErrNotFound
func (s *SQLStore) Update(ctx context.Context, value domain.Leiding) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leiding SET first_name = ?, last_name = ?, birth_date = ?, work = ?, studies = ?,
			is_team_lead = ?, is_head_staff = ?, group_id = ?, tenure_start = ?,
			experience = ?, about = ?, photo_url = ?, active = ?
		WHERE id = ?`,
		value.FirstName,
		value.LastName,
		storage.NullDate(value.BirthDate),
		value.Work,
		value.Studies,
		storage.BoolToInt(value.IsTeamLead),
		storage.BoolToInt(value.IsHeadStaff),
		storage.NullInt64(value.GroupID),
		storage.NullDate(value.TenureStart),
		value.Experience,
		value.About,
		value.PhotoURL,
		storage.BoolToInt(value.Active),
		value.ID,
	)
	if err != nil {
		return fmt.Errorf("update leiding %d: %w", value.ID, err)
	}
	return expectRow(res, value.ID)
}

// Delete removes a leiding row. Photo cleanup is the caller's job.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leiding WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete leiding %d: %w", id, err)
	}
	return expectRow(res, id)
}

// SetActive flips the active flag of one leiding.
func (s *SQLStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE leiding SET active = ? WHERE id = ?`, storage.BoolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set active leiding %d: %w", id, err)
	}
	return expectRow(res, id)
}

// BatchUpdateGroup sets group_id for every id in one statement; nil clears it.
// PRE: len(ids) > 0
// POST: all matching rows carry groupID, or none do
func (s *SQLStore) BatchUpdateGroup(ctx context.Context, ids []int64, groupID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{storage.NullInt64(groupID)}, storage.Int64Args(ids)...)
	return s.batch(ctx, `UPDATE leiding SET group_id = ? WHERE id IN (`+storage.Placeholders(len(ids))+`)`, args)
}

// BatchSetActive sets the active flag for every id in one statement.
// PRE: len(ids) > 0
func (s *SQLStore) BatchSetActive(ctx context.Context, ids []int64, active bool) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{storage.BoolToInt(active)}, storage.Int64Args(ids)...)
	return s.batch(ctx, `UPDATE leiding SET active = ? WHERE id IN (`+storage.Placeholders(len(ids))+`)`, args)
}

func (s *SQLStore) batch(ctx context.Context, query string, args []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batch update leiding: %w", err)
	}
	return tx.Commit()
}

func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("leiding %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanLeiding(scan func(dest ...any) error) (domain.Leiding, error) {
	var l domain.Leiding
	var birth, tenure sql.NullString
	var group sql.NullInt64
	var teamLead, headStaff, active int
	if err := scan(
		&l.ID,
		&l.FirstName,
		&l.LastName,
		&birth,
		&l.Work,
		&l.Studies,
		&teamLead,
		&headStaff,
		&group,
		&tenure,
		&l.Experience,
		&l.About,
		&l.PhotoURL,
		&active,
	); err != nil {
		return domain.Leiding{}, err
	}
	var err error
	if l.BirthDate, err = storage.ParseNullDate(birth); err != nil {
		return domain.Leiding{}, err
	}
	if l.TenureStart, err = storage.ParseNullDate(tenure); err != nil {
		return domain.Leiding{}, err
	}
	l.GroupID = storage.Int64Ptr(group)
	l.IsTeamLead = teamLead != 0
	l.IsHeadStaff = headStaff != 0
	l.Active = active != 0
	return l, nil
}
