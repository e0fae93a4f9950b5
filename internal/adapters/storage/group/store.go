package group

import (
	"context"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
)

// Store persists Group records. Groups are never deleted.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Group, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]domain.Group, error)
	ListActive(ctx context.Context) ([]domain.Group, error)
	Create(ctx context.Context, value domain.Group) (int64, error)
	Update(ctx context.Context, value domain.Group) error
	SetActive(ctx context.Context, id int64, active bool) error
}
