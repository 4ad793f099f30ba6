package identity

import (
	"context"
	"testing"
	"time"

	"github.com/andrebq/blogbox/internal/testutil"
	"github.com/stretchr/testify/require"
)

func acquireStore(ctx context.Context, t *testing.T) (*Store, func()) {
	db, cleanup := testutil.AcquireDatabase(ctx, t, "identities.db")
	store, err := OpenStore(ctx, db)
	if err != nil {
		cleanup()
		t.Fatal(err)
	}
	return store, cleanup
}

func TestStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store, cleanup := acquireStore(ctx, t)
	defer cleanup()

	alice, err := store.Create(ctx, NewIdentity{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, alice.ID)

	_, err = store.Create(ctx, NewIdentity{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, ErrDuplicateIdentity)
	_, err = store.Create(ctx, NewIdentity{Username: "other", Email: "alice@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	taken, err := store.Exists(ctx, "nobody", "alice@example.com")
	require.NoError(t, err)
	require.True(t, taken)
	taken, err = store.Exists(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	require.False(t, taken)

	byEmail, err := store.ByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, alice.ID, byEmail.ID)
	require.Equal(t, "x", byEmail.PasswordHash)

	_, err = store.ByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreProfileUpdate(t *testing.T) {
	ctx := context.Background()
	store, cleanup := acquireStore(ctx, t)
	defer cleanup()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }
	alice, err := store.Create(ctx, NewIdentity{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.Equal(t, []string{}, alice.Profile.Interests)

	bio := "hello"
	interests := []string{"go", "sqlite"}
	store.now = func() time.Time { return created.Add(time.Hour) }
	updated, err := store.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: &bio, Interests: &interests})
	require.NoError(t, err)
	require.Equal(t, Profile{Bio: "hello", Interests: []string{"go", "sqlite"}}, updated.Profile)
	require.Equal(t, created, updated.CreatedAt)
	require.Equal(t, created.Add(time.Hour), updated.UpdatedAt)

	// nil fields are kept, present but empty fields are cleared
	empty := ""
	updated, err = store.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: &empty})
	require.NoError(t, err)
	require.Equal(t, Profile{Bio: "", Interests: []string{"go", "sqlite"}}, updated.Profile)

	reloaded, err := store.ByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Profile, reloaded.Profile)

	_, err = store.UpdateProfile(ctx, "missing", ProfileUpdate{Bio: &bio})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUsernamesByID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := acquireStore(ctx, t)
	defer cleanup()

	alice, err := store.Create(ctx, NewIdentity{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	bob, err := store.Create(ctx, NewIdentity{Username: "bob", Email: "bob@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	names, err := store.UsernamesByID(ctx, alice.ID, bob.ID, "ghost")
	require.NoError(t, err)
	require.Equal(t, map[string]string{alice.ID: "alice", bob.ID: "bob"}, names)

	names, err = store.UsernamesByID(ctx)
	require.NoError(t, err)
	require.Empty(t, names)
}
