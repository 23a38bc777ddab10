// Package router runs navigations through before/after hooks against layered
// route registries: a base table shared by everyone plus the routes registered
// for the current session.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
	"github.com/target/navguard/internal/session"
)

// DefaultMaxRedirects bounds the redirect hops of a single navigation.
const DefaultMaxRedirects = 10

var (
	// ErrTooManyRedirects is returned when guards keep redirecting.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNavigationDenied is returned when a guard denies the navigation.
	ErrNavigationDenied = errors.New("navigation denied")
	// ErrNoDecision is returned when a hook returns without calling next.
	ErrNoDecision = errors.New("navigation guard did not call next")
)

// Client bundles the per-client surfaces a navigation runs against.
// Nil surfaces are skipped.
type Client struct {
	Tokens   ports.TokenStore
	Progress ports.Progress
	Titles   ports.TitleSink
	Notices  ports.Notifier
}

// Next is the continuation a before-hook calls exactly once.
type Next func(nav.Decision)

// BeforeHook guards a navigation.
type BeforeHook func(ctx context.Context, client Client, to, from nav.RouteRequest, next Next)

// AfterHook observes a finished navigation.
type AfterHook func(ctx context.Context, client Client, to, from nav.RouteRequest)

// Status is the outcome of a navigation.
type Status int

const (
	// StatusAllowed means the requested location was reached unchanged.
	StatusAllowed Status = iota
	// StatusRedirected means a different location was reached.
	StatusRedirected
	// StatusAborted means no location was reached.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusAllowed:
		return "allowed"
	case StatusRedirected:
		return "redirected"
	default:
		return "aborted"
	}
}

// Result describes a finished navigation.
type Result struct {
	Final   nav.RouteRequest
	Status  Status
	Matched *nav.Route
	// Hops counts followed redirects; Pushes counts those that were not replacements.
	Hops   int
	Pushes int
	Err    error
}

// Options configures a Router.
type Options struct {
	Base         *nav.Registry
	Sessions     *session.Manager
	MaxRedirects int
	Logger       *slog.Logger
}

// Router dispatches navigations.
type Router struct {
	base         *nav.Registry
	sessions     *session.Manager
	maxRedirects int
	logger       *slog.Logger
	before       []BeforeHook
	after        []AfterHook
}

// New constructs a Router.
func New(opts Options) *Router {
	base := opts.Base
	if base == nil {
		base = nav.NewRegistry()
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		base:         base,
		sessions:     opts.Sessions,
		maxRedirects: maxRedirects,
		logger:       logger.With("component", "router"),
	}
}

// BeforeEach registers a hook run before every navigation hop.
func (r *Router) BeforeEach(h BeforeHook) { r.before = append(r.before, h) }

// AfterEach registers a hook run once every navigation has finished.
func (r *Router) AfterEach(h AfterHook) { r.after = append(r.after, h) }

// Resolve matches path against the session's routes, then the base table.
func (r *Router) Resolve(ctx context.Context, client Client, path string) (nav.Route, bool) {
	if r.sessions != nil && client.Tokens != nil {
		if token, ok := client.Tokens.Get(ctx); ok {
			if sc, found := r.sessions.Lookup(token); found {
				if rt, matched := sc.Resolve(path); matched {
					return rt, true
				}
			}
		}
	}
	return r.base.Resolve(path)
}

// Navigate runs a navigation to `to` and follows redirects until a hook allows
// or denies it.
func (r *Router) Navigate(ctx context.Context, client Client, to nav.RouteRequest) Result {
	origin := to
	var from nav.RouteRequest
	var res Result

	for {
		if res.Hops > r.maxRedirects {
			res.Status = StatusAborted
			res.Err = ErrTooManyRedirects
			r.logger.WarnContext(ctx, "navigation redirect loop", "path", origin.Path, "hops", res.Hops)
			r.runAfter(ctx, client, to, from)
			return res
		}

		to = r.withMeta(ctx, client, to)
		d, err := r.runBefore(ctx, client, to, from)
		if err != nil {
			res.Status = StatusAborted
			res.Err = err
			r.runAfter(ctx, client, to, from)
			return res
		}

		switch d.Kind {
		case nav.DecisionAllow:
			res.Final = to
			if rt, ok := r.Resolve(ctx, client, to.Path); ok {
				res.Matched = &rt
			}
			res.Status = StatusAllowed
			if !to.SameLocation(origin) {
				res.Status = StatusRedirected
			}
			r.runAfter(ctx, client, to, from)
			return res
		case nav.DecisionRedirect:
			res.Hops++
			if !d.Target.Replace {
				res.Pushes++
			}
			to = d.Target
		default:
			res.Status = StatusAborted
			res.Err = ErrNavigationDenied
			r.runAfter(ctx, client, to, from)
			return res
		}
	}
}

func (r *Router) withMeta(ctx context.Context, client Client, to nav.RouteRequest) nav.RouteRequest {
	if to.Meta != (nav.RouteMeta{}) {
		return to
	}
	if rt, ok := r.Resolve(ctx, client, to.Path); ok {
		to.Meta = rt.Meta
	}
	return to
}

func (r *Router) runBefore(ctx context.Context, client Client, to, from nav.RouteRequest) (nav.Decision, error) {
	for _, hook := range r.before {
		var (
			decided nav.Decision
			calls   int
		)
		next := func(d nav.Decision) {
			calls++
			if calls > 1 {
				r.logger.WarnContext(ctx, "navigation guard called next more than once", "path", to.Path)
				return
			}
			decided = d
		}
		hook(ctx, client, to, from, next)
		if calls == 0 {
			return nav.Decision{}, ErrNoDecision
		}
		if decided.Kind != nav.DecisionAllow {
			return decided, nil
		}
	}
	return nav.Allow(), nil
}

func (r *Router) runAfter(ctx context.Context, client Client, to, from nav.RouteRequest) {
	for _, hook := range r.after {
		hook(ctx, client, to, from)
	}
}
