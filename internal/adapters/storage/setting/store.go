package setting

import (
	"context"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// Store persists typed settings.
type Store interface {
	Get(ctx context.Context, key string) (domain.Setting, error)
	List(ctx context.Context) ([]domain.Setting, error)
	Set(ctx context.Context, value domain.Setting) error
	EnsureDefaults(ctx context.Context, defaults []domain.Setting) error
}
