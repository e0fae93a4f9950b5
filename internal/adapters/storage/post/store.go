package post

import (
	"context"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
)

// Store persists Post records.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListPublished(ctx context.Context) ([]domain.Post, error)
	Create(ctx context.Context, value domain.Post) (int64, error)
	Update(ctx context.Context, value domain.Post) error
	Delete(ctx context.Context, id int64) error
}
