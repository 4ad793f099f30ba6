package blog

import (
	"context"
	"testing"
	"time"

	"github.com/andrebq/blogbox/internal/testutil"
	"github.com/stretchr/testify/require"
)

func acquireStore(ctx context.Context, t *testing.T) (*Store, func()) {
	db, cleanup := testutil.AcquireDatabase(ctx, t, "posts.db")
	store, err := OpenStore(ctx, db)
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	return store, cleanup
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store, cleanup := acquireStore(ctx, t)
	defer cleanup()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }
	first, err := store.Create(ctx, "alice-id", NewPost{Title: "First", Content: "hello"})
	require.NoError(t, err)
	require.Equal(t, []string{}, first.Tags)

	store.now = func() time.Time { return start.Add(time.Minute) }
	second, err := store.Create(ctx, "bob-id", NewPost{Title: "Second", Content: "world", Tags: []string{"go"}})
	require.NoError(t, err)

	posts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, second.ID, posts[0].ID, "newest post should come first")
	require.Equal(t, first.ID, posts[1].ID)
	require.Equal(t, []string{"go"}, posts[0].Tags)

	title := "First, edited"
	tags := []string{"edited"}
	store.now = func() time.Time { return start.Add(time.Hour) }
	updated, err := store.Update(ctx, first.ID, PostUpdate{Title: &title, Tags: &tags})
	require.NoError(t, err)
	require.Equal(t, "First, edited", updated.Title)
	require.Equal(t, "hello", updated.Content)
	require.Equal(t, "alice-id", updated.Author)
	require.Equal(t, start, updated.CreatedAt)
	require.Equal(t, start.Add(time.Hour), updated.UpdatedAt)

	reloaded, err := store.ByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, updated, reloaded)

	require.NoError(t, store.Delete(ctx, first.ID))
	_, err = store.ByID(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, first.ID), ErrNotFound)
	_, err = store.Update(ctx, first.ID, PostUpdate{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderWithSameTimestamp(t *testing.T) {
	ctx := context.Background()
	store, cleanup := acquireStore(ctx, t)
	defer cleanup()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		p, err := store.Create(ctx, "alice-id", NewPost{Title: title, Content: "x"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	posts, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
}
