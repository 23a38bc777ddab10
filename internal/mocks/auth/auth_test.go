package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

func TestMockAuthProvider_Begin_Counts(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()
	input := ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"}

	_, state, nonce, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	authURL, state, _, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-2", state)
}

func TestMockAuthProvider_Exchange(t *testing.T) {
	provider := &MockAuthProvider{}
	p, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", p.UserID)
	assert.Equal(t, []string{"users"}, p.Groups)
	assert.True(t, p.ExpiresAt.After(time.Now()))
}

func TestStaticRoleMapper(t *testing.T) {
	mapper := StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"}
	assert.Equal(t, domainauth.RoleAdmin, mapper.Map([]string{"users", "admins"}))
	assert.Equal(t, domainauth.RoleUser, mapper.Map([]string{"users", "other"}))
	assert.Equal(t, domainauth.RoleGuest, mapper.Map(nil))
	assert.Equal(t, domainauth.RoleGuest, StaticRoleMapper{}.Map([]string{"admins"}))
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{}))

	sess := domainauth.Session{ID: "s1", UserID: "u1", Role: domainauth.RoleUser}
	require.NoError(t, store.Save(ctx, sess))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.Equal(t, ErrNotFound, err)
	assert.Zero(t, store.Len())
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository(map[string][]string{
		domainauth.RoleKeyCommon: {"system:user:list", "system:dict:list"},
	})
	ctx := context.Background()

	u, err := repo.Upsert(ctx, ports.UpsertUserInput{Subject: "alice", UserName: "alice", RoleKey: domainauth.RoleKeyCommon})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	again, err := repo.Upsert(ctx, ports.UpsertUserInput{Subject: "alice", UserName: "alice2", RoleKey: domainauth.RoleKeyCommon})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "alice2", again.UserName)

	roles, err := repo.ListRoleKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domainauth.RoleKeyCommon}, roles)

	perms, err := repo.ListPermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"system:user:list", "system:dict:list"}, perms)

	_, err = repo.GetBySubject(ctx, "bob")
	assert.Equal(t, ErrNotFound, err)
}
