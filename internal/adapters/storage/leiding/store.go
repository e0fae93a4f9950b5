package leiding

import (
	"context"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// Store persists Leiding records.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Leiding, error)
	ListAll(ctx context.Context) ([]domain.Leiding, error)
	ListActive(ctx context.Context) ([]domain.Leiding, error)
	ListInactive(ctx context.Context) ([]domain.Leiding, error)
	Create(ctx context.Context, value domain.Leiding) (int64, error)
	Update(ctx context.Context, value domain.Leiding) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	BatchUpdateGroup(ctx context.Context, ids []int64, groupID *int64) error
	BatchSetActive(ctx context.Context, ids []int64, active bool) error
}
