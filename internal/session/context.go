// Package session holds per-client navigation state: the identity fetched for a
// session token, the routes registered for it, and the bootstrap-in-progress flag.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
)

// Context is the state kept for one session token.
type Context struct {
	token string

	mu       sync.RWMutex
	identity *domainauth.Identity
	routes   []nav.Route
	registry *nav.Registry

	relogin  atomic.Bool
	pins     atomic.Int32
	lastSeen atomic.Int64
}

func newContext(token string, now time.Time) *Context {
	c := &Context{token: token, registry: nav.NewRegistry()}
	c.touch(now)
	return c
}

// Token returns the session token the context belongs to.
func (c *Context) Token() string { return c.token }

// Identity returns the cached identity, if bootstrapped.
func (c *Context) Identity() (domainauth.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return domainauth.Identity{}, false
	}
	return *c.identity, true
}

// RolesLoaded reports whether the identity's role list is populated.
func (c *Context) RolesLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity != nil && c.identity.HasRoles()
}

// Install registers every non-external route and then caches the identity, so
// RolesLoaded never reports true before the routes are resolvable.
// It returns the number of route records registered.
func (c *Context) Install(identity domainauth.Identity, routes []nav.Route) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Reset()
	added := 0
	for _, rt := range routes {
		if nav.IsExternal(rt.Path) {
			continue
		}
		added += c.registry.AddRoute(rt)
	}
	c.routes = append([]nav.Route(nil), routes...)
	id := identity
	c.identity = &id
	return added
}

// Routes returns the generated route table, external routes included.
func (c *Context) Routes() []nav.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]nav.Route(nil), c.routes...)
}

// Resolve matches path against the routes registered for this session.
func (c *Context) Resolve(path string) (nav.Route, bool) {
	return c.registry.Resolve(path)
}

// SetRelogin records whether a bootstrap is in flight.
func (c *Context) SetRelogin(v bool) { c.relogin.Store(v) }

// ReloginInProgress reports whether a bootstrap is in flight.
func (c *Context) ReloginInProgress() bool { return c.relogin.Load() }

// Pin keeps the context from being swept until the returned func is called.
// A bootstrap holds a pin from the identity fetch until its routes are installed.
func (c *Context) Pin() (unpin func()) {
	c.pins.Add(1)
	var once sync.Once
	return func() { once.Do(func() { c.pins.Add(-1) }) }
}

func (c *Context) pinned() bool { return c.pins.Load() > 0 }

// Reset drops the identity and registered routes.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = nil
	c.routes = nil
	c.registry.Reset()
	c.relogin.Store(false)
}

func (c *Context) touch(now time.Time) { c.lastSeen.Store(now.UnixNano()) }

func (c *Context) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastSeen.Load()))
}
