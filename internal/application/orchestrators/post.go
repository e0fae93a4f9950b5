package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
)

// mdRenderer turns post bodies into the HTML description shown on the public site.
// Raw HTML in the source is escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts Markdown to HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// PostStoreForOrchestrator defines the store interface needed by post orchestrators.
type PostStoreForOrchestrator interface {
	GetByID(ctx context.Context, id int64) (post.Post, error)
	Create(ctx context.Context, value post.Post) (int64, error)
	Update(ctx context.Context, value post.Post) error
	Delete(ctx context.Context, id int64) error
}

// PostInput carries the post form.
type PostInput struct {
	Title     string
	Body      string
	Published bool
}

// PostDeps holds dependencies for the post orchestrators.
type PostDeps struct {
	PostStore  PostStoreForOrchestrator
	Objects    ObjectStore
	GenerateID func() string
	Now        func() time.Time
}

// CreatePostInput adds the author to the form.
type CreatePostInput struct {
	PostInput
	AuthorID   string
	AuthorName string
}

// ExecuteCreatePost stores a post with its rendered description.
// PRE: Title, Body and AuthorID are non-empty
// POST: Description is the HTML of Body; PublishedAt is set when Published
func ExecuteCreatePost(ctx context.Context, input CreatePostInput, deps PostDeps) (int64, error) {
	now := deps.Now()
	p := post.Post{
		Title:      input.Title,
		Body:       input.Body,
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.Validate(); err != nil {
		return 0, invalid(err)
	}
	html, err := RenderMarkdown(p.Body)
	if err != nil {
		return 0, err
	}
	p.Description = html
	if input.Published {
		_ = p.Publish(now)
	}

	id, err := deps.PostStore.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	slog.Info("post_event", "event", "post_created", "post_id", id, "published", p.Published, "author_id", p.AuthorID)
	return id, nil
}

// ExecuteUpdatePost overwrites title and body and applies the publish toggle.
// PRE: post exists
// POST: Description re-rendered; PublishedAt kept while the post stays published
func ExecuteUpdatePost(ctx context.Context, id int64, input PostInput, deps PostDeps) (post.Post, error) {
	p, err := deps.PostStore.GetByID(ctx, id)
	if err != nil {
		return post.Post{}, err
	}
	now := deps.Now()
	p.Title = input.Title
	p.Body = input.Body
	if err := p.Validate(); err != nil {
		return post.Post{}, invalid(err)
	}
	if p.Description, err = RenderMarkdown(p.Body); err != nil {
		return post.Post{}, err
	}

	switch {
	case input.Published && !p.Published:
		_ = p.Publish(now)
	case !input.Published && p.Published:
		_ = p.Unpublish()
	}
	p.UpdatedAt = now

	if err := deps.PostStore.Update(ctx, p); err != nil {
		return post.Post{}, err
	}
	slog.Info("post_event", "event", "post_updated", "post_id", id, "published", p.Published)
	return p, nil
}

// ExecuteDeletePost removes the cover image and then the post.
// PRE: post exists
func ExecuteDeletePost(ctx context.Context, id int64, deps PostDeps) error {
	p, err := deps.PostStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.CoverURL != "" {
		if err := deps.Objects.Delete(ctx, objectstore.BucketPosts, p.CoverURL); err != nil {
			return fmt.Errorf("delete cover: %w", err)
		}
	}
	if err := deps.PostStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("post_event", "event", "post_deleted", "post_id", id)
	return nil
}

// ExecuteUploadPostCover stores a normalised cover image and replaces the old one.
// PRE: post exists; r yields a jpeg, png or gif
// POST: CoverURL points at the new object
func ExecuteUploadPostCover(ctx context.Context, id int64, r io.Reader, deps PostDeps) (string, error) {
	p, err := deps.PostStore.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	img, err := objectstore.NormalizePhoto(r)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%d/%s%s", id, deps.GenerateID(), objectstore.PhotoExtension)
	url, err := deps.Objects.Upload(ctx, objectstore.BucketPosts, key, img)
	if err != nil {
		return "", err
	}

	previous := p.CoverURL
	p.CoverURL = url
	p.UpdatedAt = deps.Now()
	if err := deps.PostStore.Update(ctx, p); err != nil {
		return "", err
	}
	if previous != "" {
		if err := deps.Objects.Delete(ctx, objectstore.BucketPosts, previous); err != nil && !errors.Is(err, objectstore.ErrForeignURL) {
			slog.Warn("post_old_cover_kept", "post_id", id, "cover_url", previous, "error", err)
		}
	}
	slog.Info("post_event", "event", "post_cover_uploaded", "post_id", id)
	return url, nil
}
