package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/audit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/storagetest"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
)

func TestSQLStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := audit.NewSQLStore(storagetest.Open(t))
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []domain.Event{
		domain.NewEvent("a", base, domain.CategoryAccount, domain.ActionLogin).WithActor("acct-1", "jana@ksa.test"),
		domain.NewEvent("b", base.Add(500*time.Millisecond), domain.CategoryLeiding, domain.ActionMassEdit).
			WithActor("acct-1", "jana@ksa.test").WithResource("leiding", "5,7").WithDescription("wipe_group"),
		domain.NewEvent("c", base.Add(time.Second), domain.CategoryLeiding, domain.ActionDelete).
			WithActor("acct-2", "tom@ksa.test").WithResource("leiding", "9"),
	}
	for _, e := range events {
		require.NoError(t, store.Save(ctx, e))
	}

	all, err := store.List(ctx, audit.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID}, "newest first")
	assert.True(t, all[1].Timestamp.Equal(base.Add(500*time.Millisecond)))
	assert.Equal(t, "5,7", all[1].ResourceID)

	leiding, err := store.List(ctx, audit.Filter{Category: domain.CategoryLeiding}, 10)
	require.NoError(t, err)
	assert.Len(t, leiding, 2)

	mine, err := store.List(ctx, audit.Filter{ActorID: "acct-1"}, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	recent, err := store.List(ctx, audit.Filter{Since: base.Add(time.Second)}, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "c", recent[0].ID)

	limited, err := store.List(ctx, audit.Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLStore_SaveRejectsInvalid(t *testing.T) {
	store := audit.NewSQLStore(storagetest.Open(t))
	err := store.Save(context.Background(), domain.NewEvent("", time.Now(), domain.CategoryAccount, domain.ActionLogin))
	assert.ErrorIs(t, err, domain.ErrMissingID)
}
