package post_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/post"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/storagetest"
	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
)

func TestSQLStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := post.NewSQLStore(storagetest.Open(t))
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	draft := domain.Post{
		Title:       "Inschrijvingen kamp",
		Body:        "De inschrijvingen zijn **open**.",
		Description: "<p>De inschrijvingen zijn <strong>open</strong>.</p>\n",
		AuthorID:    "acc-1",
		AuthorName:  "Jan Peeters",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := store.Create(ctx, draft)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.Description, got.Description)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.False(t, got.Published)
	assert.True(t, got.PublishedAt.IsZero())

	published, err := store.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	require.NoError(t, got.Publish(now.Add(time.Hour)))
	got.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, store.Update(ctx, got))

	published, err = store.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.True(t, published[0].PublishedAt.Equal(now.Add(time.Hour)))
	assert.Equal(t, "Jan Peeters", published[0].AuthorName)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.GetByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
