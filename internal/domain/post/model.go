package post

import (
	"errors"
	"time"
)

// MaxTitleLength bounds the post title.
const MaxTitleLength = 200

// Domain errors
var (
	ErrEmptyTitle       = errors.New("post title cannot be empty")
	ErrTitleTooLong     = errors.New("post title cannot exceed 200 characters")
	ErrEmptyBody        = errors.New("post body cannot be empty")
	ErrMissingAuthor    = errors.New("post author is required")
	ErrAlreadyPublished = errors.New("post is already published")
	ErrNotPublished     = errors.New("post is not published")
)

// Post is an editorial article shown on the public site.
// Body holds the Markdown source; Description holds the rendered HTML.
type Post struct {
	ID          int64
	Title       string
	Body        string
	Description string
	CoverURL    string
	Published   bool
	PublishedAt time.Time
	AuthorID    string // account id of the author
	AuthorName  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Post has valid data.
// PRE: Post struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Post) Validate() error {
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if p.Body == "" {
		return ErrEmptyBody
	}
	if p.AuthorID == "" {
		return ErrMissingAuthor
	}
	return nil
}

// Publish makes the post public.
// PRE: Post is not published
// POST: Published is true, PublishedAt is now
func (p *Post) Publish(now time.Time) error {
	if p.Published {
		return ErrAlreadyPublished
	}
	p.Published = true
	p.PublishedAt = now
	return nil
}

// Unpublish hides the post again. PublishedAt is cleared.
func (p *Post) Unpublish() error {
	if !p.Published {
		return ErrNotPublished
	}
	p.Published = false
	p.PublishedAt = time.Time{}
	return nil
}
