package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestManager_AcquireLookupRemove(t *testing.T) {
	m := NewManager(ManagerOptions{})

	_, ok := m.Lookup("tok")
	assert.False(t, ok)
	_, ok = m.Lookup("")
	assert.False(t, ok)

	c := m.Acquire("tok")
	require.NotNil(t, c)
	assert.Equal(t, "tok", c.Token())
	assert.Same(t, c, m.Acquire("tok"))

	got, ok := m.Lookup("tok")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, m.Len())

	c.Install(domainauth.Identity{Roles: []string{"common"}}, []nav.Route{{Path: "/dashboard"}})
	m.Remove("tok")
	assert.Zero(t, m.Len())
	assert.False(t, c.RolesLoaded(), "removed context is reset")
	assert.False(t, c.registry.Has("/dashboard"))
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(ManagerOptions{IdleTTL: time.Minute, Now: clock.Now})

	m.Acquire("idle")
	busy := m.Acquire("busy")
	busy.SetRelogin(true)

	clock.Advance(30 * time.Second)
	m.Acquire("fresh")
	assert.Zero(t, m.Sweep())

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, m.Sweep(), "only the idle context without a bootstrap in flight goes")

	_, ok := m.Lookup("idle")
	assert.False(t, ok)
	_, ok = m.Lookup("busy")
	assert.True(t, ok)
	_, ok = m.Lookup("fresh")
	assert.True(t, ok)
}

func TestContext_Install(t *testing.T) {
	c := newContext("tok", time.Now())
	assert.False(t, c.RolesLoaded())
	_, ok := c.Identity()
	assert.False(t, ok)

	routes := []nav.Route{
		{Path: "/dashboard", Meta: nav.RouteMeta{Title: "Dashboard"}},
		{Path: "https://example.com", Meta: nav.RouteMeta{Title: "Docs"}},
		{Path: "/system", Children: []nav.Route{{Path: "user"}}},
	}
	n := c.Install(domainauth.Identity{Roles: []string{"common"}}, routes)
	assert.Equal(t, 3, n)
	assert.True(t, c.RolesLoaded())
	assert.Len(t, c.Routes(), 3, "route table keeps external links for menus")

	rt, ok := c.Resolve("/dashboard")
	require.True(t, ok)
	assert.Equal(t, "Dashboard", rt.Meta.Title)
	_, ok = c.Resolve("/system/user")
	assert.True(t, ok)

	// An identity without roles is cached but does not count as loaded.
	c.Install(domainauth.Identity{}, nil)
	assert.False(t, c.RolesLoaded())
	_, ok = c.Identity()
	assert.True(t, ok)
}

func TestContext_ReloginFlag(t *testing.T) {
	c := newContext("tok", time.Now())
	assert.False(t, c.ReloginInProgress())
	c.SetRelogin(true)
	assert.True(t, c.ReloginInProgress())
	c.Reset()
	assert.False(t, c.ReloginInProgress())
}

func TestManager_SweepKeepsPinnedContexts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m := NewManager(ManagerOptions{IdleTTL: time.Minute, Now: clock.Now})

	c := m.Acquire("tok")
	unpin := c.Pin()
	clock.Advance(time.Hour)
	assert.Zero(t, m.Sweep())

	unpin()
	unpin() // second call is a no-op
	assert.Equal(t, 1, m.Sweep())
	_, ok := m.Lookup("tok")
	assert.False(t, ok)
}
