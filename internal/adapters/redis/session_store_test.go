package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/testutil"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(testutil.SetupTestRedis(t), SessionStoreOptions{Prefix: "test:session:"})
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "test-session-1",
		UserID:    "user-123",
		Email:     "user@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Role, got.Role)
	assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)

	ttl, err := store.client.TTL(ctx, "test:session:test-session-1").Result()
	require.NoError(t, err)
	assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 5)
}

func TestSessionStore_FallbackTTL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "no-expiry"}))
	got, err := store.Get(ctx, "no-expiry")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), got.ExpiresAt, time.Minute)
}

func TestSessionStore_Missing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "non-existent")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "gone", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Delete(ctx, "gone"))
	_, err := store.Get(ctx, "gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Expired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.Error(t, store.Save(ctx, domainauth.Session{}))

	// stored deadline passes before the key expires
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "soon", ExpiresAt: time.Now().Add(time.Minute)}))
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err := store.Get(ctx, "soon")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := store.client.Exists(ctx, "test:session:soon").Result()
	require.NoError(t, err)
	assert.Zero(t, n, "expired session is removed")
}

func TestSessionStore_EachAndPurge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: id, UserID: "user-" + id}))
	}
	// keys outside the prefix are left alone
	require.NoError(t, store.client.Set(ctx, "other:key", "x", time.Minute).Err())

	var users []string
	require.NoError(t, store.Each(ctx, func(sess domainauth.Session) error {
		users = append(users, sess.UserID)
		return nil
	}))
	assert.ElementsMatch(t, []string{"user-a", "user-b", "user-c"}, users)

	removed, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	exists, err := store.client.Exists(ctx, "other:key").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}
