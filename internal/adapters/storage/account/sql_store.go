package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

const columns = `id, email, password_hash, first_name, last_name, permission, created_at, failed_logins, locked_until`

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email is already registered")

// SQLStore implements Store over the profiles table.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new account store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Compile-time check that the store can resolve permissions.
var _ domain.PermissionLookup = (*SQLStore)(nil)

// GetByID retrieves an account by id.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM profiles WHERE id = ?`, id)
	a, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}
	return a, err
}

// GetByEmail retrieves an account by email, case-insensitively.
// PRE: email is non-empty
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM profiles WHERE email = ?`, normalizeEmail(email))
	a, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %s: %w", email, storage.ErrNotFound)
	}
	return a, err
}

// Create inserts a new account.
// PRE: value has been validated and has an ID and password hash
// POST: row exists, or ErrEmailTaken
func (s *SQLStore) Create(ctx context.Context, value domain.Account) error {
	email := normalizeEmail(value.Email)
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return ErrEmailTaken
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, first_name, last_name, permission, created_at, failed_logins, locked_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		value.ID,
		email,
		value.PasswordHash,
		value.FirstName,
		value.LastName,
		int(value.Permission),
		storage.FormatTimestamp(value.CreatedAt),
		value.FailedLogins,
		storage.NullTimestamp(value.LockedUntil),
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// SaveLoginState persists the failed-login counter and lock.
func (s *SQLStore) SaveLoginState(ctx context.Context, value domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET failed_logins = ?, locked_until = ? WHERE id = ?`,
		value.FailedLogins, storage.NullTimestamp(value.LockedUntil), value.ID,
	)
	return err
}

// SetPermission changes the access level of an account.
// PRE: p.Valid()
func (s *SQLStore) SetPermission(ctx context.Context, id string, p domain.Permission) error {
	if !p.Valid() {
		return domain.ErrInvalidPermission
	}
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET permission = ? WHERE id = ?`, int(p), id)
	if err != nil {
		return fmt.Errorf("set permission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// PermissionFor reads only the permission column.
// POST: returns domain.ErrAccountNotFound when no profile exists
func (s *SQLStore) PermissionFor(ctx context.Context, id string) (domain.Permission, error) {
	var p int
	err := s.db.QueryRowContext(ctx, `SELECT permission FROM profiles WHERE id = ?`, id).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PermissionNone, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.PermissionNone, err
	}
	return domain.Permission(p), nil
}

// List returns all accounts, highest permission first then by email.
func (s *SQLStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM profiles ORDER BY permission DESC, email`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var permission int
	var createdAt, lockedUntil sql.NullString
	err := scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&permission,
		&createdAt,
		&a.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Permission = domain.Permission(permission)
	if a.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return domain.Account{}, err
	}
	if a.LockedUntil, err = storage.ParseTimestamp(lockedUntil); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
