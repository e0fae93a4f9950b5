package account

import (
	"context"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// Store persists dashboard profiles.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, value domain.Account) error
	SaveLoginState(ctx context.Context, value domain.Account) error
	SetPermission(ctx context.Context, id string, p domain.Permission) error
	PermissionFor(ctx context.Context, id string) (domain.Permission, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}
