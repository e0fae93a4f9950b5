package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/storagetest"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

func seed(t *testing.T, store *account.SQLStore, id, email string, p domain.Permission) {
	t.Helper()
	err := store.Create(context.Background(), domain.Account{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		Permission:   p,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestSQLStore_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := account.NewSQLStore(storagetest.Open(t))
	seed(t, store, "u1", " Jan@KSAPetegem.be ", domain.PermissionRead)

	byEmail, err := store.GetByEmail(ctx, "jan@ksapetegem.be")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "jan@ksapetegem.be", byEmail.Email, "emails are stored normalised")

	byID, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionRead, byID.Permission)

	err = store.Create(ctx, domain.Account{ID: "u2", Email: "JAN@ksapetegem.be", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, account.ErrEmailTaken)

	_, err = store.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLStore_Permissions(t *testing.T) {
	ctx := context.Background()
	store := account.NewSQLStore(storagetest.Open(t))
	seed(t, store, "u1", "a@x.be", domain.PermissionNone)
	seed(t, store, "u2", "b@x.be", domain.PermissionAdmin)

	require.NoError(t, store.SetPermission(ctx, "u1", domain.PermissionEdit))
	p, err := store.PermissionFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionEdit, p)

	_, err = store.PermissionFor(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	resolved, err := domain.ResolvePermission(ctx, store, "ghost")
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionNone, resolved)

	assert.ErrorIs(t, store.SetPermission(ctx, "u1", 9), domain.ErrInvalidPermission)
	assert.ErrorIs(t, store.SetPermission(ctx, "ghost", domain.PermissionRead), storage.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u2", list[0].ID, "admins first")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLStore_LoginState(t *testing.T) {
	ctx := context.Background()
	store := account.NewSQLStore(storagetest.Open(t))
	seed(t, store, "u1", "a@x.be", domain.PermissionRead)

	a, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < domain.MaxFailedLogins; i++ {
		a.RecordFailedLogin(now)
	}
	require.NoError(t, store.SaveLoginState(ctx, a))

	a, err = store.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, a.IsLocked(now))
	assert.Equal(t, domain.MaxFailedLogins, a.FailedLogins)
}
