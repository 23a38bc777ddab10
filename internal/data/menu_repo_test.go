package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
	"github.com/target/navguard/internal/testutil"
)

func menuIDs(menus []nav.Menu) []int64 {
	out := make([]int64, len(menus))
	for i, m := range menus {
		out[i] = m.ID
	}
	return out
}

func TestMenuRepo_ListAll(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		menus, err := NewMenuRepo(db).ListAll(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, menus)

		for _, m := range menus {
			assert.NotEqual(t, nav.MenuButton, m.Type, "buttons are not listed")
		}
		// ordered by parent then order number
		assert.Equal(t, []int64{1, 2, 3, 4}, menuIDs(menus)[:4])

		var site nav.Menu
		for _, m := range menus {
			if m.ID == 4 {
				site = m
			}
		}
		assert.True(t, site.External)
		assert.Equal(t, nav.MenuDirectory, site.Type)
	})
}

func TestMenuRepo_ListForUser(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		u, err := NewUserRepo(db).Upsert(ctx, ports.UpsertUserInput{
			Subject: uniqueSubject("menus"),
			RoleKey: domainauth.RoleKeyCommon,
		})
		require.NoError(t, err)

		repo := NewMenuRepo(db)
		menus, err := repo.ListForUser(ctx, u.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2, 4, 100, 105, 109}, menuIDs(menus))

		none, err := repo.ListForUser(ctx, -1)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
