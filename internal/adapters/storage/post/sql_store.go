package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
)

const columns = `id, title, body, description, cover_url, published, published_at,
	author_id, author_name, created_at, updated_at`

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new post store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a post by id.
// POST: Returns the post or an error wrapping storage.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id int64) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return p, err
}

// List returns every post, newest first.
func (s *SQLStore) List(ctx context.Context) ([]domain.Post, error) {
	return s.list(ctx, `SELECT `+columns+` FROM posts ORDER BY created_at DESC, id DESC`)
}

// ListPublished returns published posts, most recently published first.
func (s *SQLStore) ListPublished(ctx context.Context) ([]domain.Post, error) {
	return s.list(ctx, `SELECT `+columns+` FROM posts WHERE published = 1 ORDER BY published_at DESC, id DESC`)
}

func (s *SQLStore) list(ctx context.Context, query string) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a post and returns its id.
// PRE: value has been validated; CreatedAt and UpdatedAt are set
func (s *SQLStore) Create(ctx context.Context, value domain.Post) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, body, description, cover_url, published, published_at,
			author_id, author_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		value.Title,
		value.Body,
		value.Description,
		value.CoverURL,
		storage.BoolToInt(value.Published),
		storage.NullTimestamp(value.PublishedAt),
		value.AuthorID,
		value.AuthorName,
		storage.FormatTimestamp(value.CreatedAt),
		storage.FormatTimestamp(value.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

// Update overwrites the editable fields of a post. Author and creation time are kept.
// PRE: value has been validated
func (s *SQLStore) Update(ctx context.Context, value domain.Post) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, body = ?, description = ?, cover_url = ?, published = ?,
			published_at = ?, updated_at = ?
		WHERE id = ?`,
		value.Title,
		value.Body,
		value.Description,
		value.CoverURL,
		storage.BoolToInt(value.Published),
		storage.NullTimestamp(value.PublishedAt),
		storage.FormatTimestamp(value.UpdatedAt),
		value.ID,
	)
	if err != nil {
		return fmt.Errorf("update post %d: %w", value.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", value.ID, storage.ErrNotFound)
	}
	return nil
}

// Delete removes a post. Cover image cleanup is the caller's job.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanPost(scan func(dest ...any) error) (domain.Post, error) {
	var p domain.Post
	var published int
	var publishedAt, createdAt, updatedAt sql.NullString
	if err := scan(
		&p.ID,
		&p.Title,
		&p.Body,
		&p.Description,
		&p.CoverURL,
		&published,
		&publishedAt,
		&p.AuthorID,
		&p.AuthorName,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Post{}, err
	}
	p.Published = published != 0
	var err error
	if p.PublishedAt, err = storage.ParseTimestamp(publishedAt); err != nil {
		return domain.Post{}, err
	}
	if p.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return domain.Post{}, err
	}
	if p.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return domain.Post{}, err
	}
	return p, nil
}
