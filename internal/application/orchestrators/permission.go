package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// AccountStoreForPermission defines the store interface needed by SetPermission.
type AccountStoreForPermission interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	SetPermission(ctx context.Context, id string, p account.Permission) error
}

// SetPermissionInput names who changes whose level.
type SetPermissionInput struct {
	ActorID    string
	AccountID  string
	Permission account.Permission
}

// SetPermissionDeps holds dependencies for SetPermission.
type SetPermissionDeps struct {
	AccountStore AccountStoreForPermission
}

// ErrOwnPermission stops administrators from locking themselves out.
var ErrOwnPermission = errors.New("you cannot change your own permission")

// ExecuteSetPermission changes an account's access level.
// PRE: actor is a full administrator (checked by the caller); level is 0-3
// POST: stored level equals input.Permission
func ExecuteSetPermission(ctx context.Context, input SetPermissionInput, deps SetPermissionDeps) error {
	if !input.Permission.Valid() {
		return account.ErrInvalidPermission
	}
	if input.ActorID == input.AccountID {
		return ErrOwnPermission
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if acct.Permission == input.Permission {
		return nil
	}
	if err := deps.AccountStore.SetPermission(ctx, input.AccountID, input.Permission); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "permission_changed", "account_id", input.AccountID,
		"from", acct.Permission.String(), "to", input.Permission.String(), "by", input.ActorID)
	return nil
}
