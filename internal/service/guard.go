package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/observability/metrics"
	"github.com/target/navguard/internal/observability/statsd"
	"github.com/target/navguard/internal/ports"
	"github.com/target/navguard/internal/router"
	"github.com/target/navguard/internal/session"
	"golang.org/x/sync/singleflight"
)

// Guard defaults.
const (
	DefaultLoginPath   = "/login"
	DefaultRootPath    = "/"
	DefaultLandingPath = "/index"
	DefaultTokenParam  = "token"

	// LoginRequiredMessage is shown when an anonymous user hits a protected path.
	LoginRequiredMessage = "Please log in first"
)

var (
	// ErrNoToken is returned when a session is required but no token was presented.
	ErrNoToken = errors.New("session token is required")

	errGuardMisconfigured = errors.New("guard requires a session manager, identity store and route generator")
)

// GuardState is what the guard knows about the client before deciding.
type GuardState struct {
	HasToken    bool
	RolesLoaded bool
}

// GuardOptions groups dependencies and settings for Guard.
type GuardOptions struct {
	Sessions   *session.Manager
	Identities ports.IdentityStore
	Routes     ports.RouteGenerator

	AllowList   *nav.AllowList
	LoginPath   string
	RootPath    string
	LandingPath string
	TokenParam  string

	// BootstrapTimeout bounds identity fetch plus route generation. Zero disables it.
	BootstrapTimeout time.Duration

	Metrics statsd.Sink
	Logger  *slog.Logger
}

// Guard is the navigation guard run before every SPA navigation.
type Guard struct {
	sessions   *session.Manager
	identities ports.IdentityStore
	routes     ports.RouteGenerator

	allow       *nav.AllowList
	loginPath   string
	rootPath    string
	landingPath string
	tokenParam  string
	timeout     time.Duration

	flight  singleflight.Group
	metrics statsd.Sink
	logger  *slog.Logger
	now     func() time.Time
}

// NewGuard constructs a Guard.
func NewGuard(opts GuardOptions) (*Guard, error) {
	if opts.Sessions == nil || opts.Identities == nil || opts.Routes == nil {
		return nil, errGuardMisconfigured
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	allow := opts.AllowList
	if allow == nil {
		allow = nav.NewAllowList(nav.DefaultAllowList...)
	}
	return &Guard{
		sessions:    opts.Sessions,
		identities:  opts.Identities,
		routes:      opts.Routes,
		allow:       allow,
		loginPath:   orDefault(opts.LoginPath, DefaultLoginPath),
		rootPath:    orDefault(opts.RootPath, DefaultRootPath),
		landingPath: orDefault(opts.LandingPath, DefaultLandingPath),
		tokenParam:  orDefault(opts.TokenParam, DefaultTokenParam),
		timeout:     opts.BootstrapTimeout,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "nav_guard"),
		now:         time.Now,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Decide maps the client state and target onto a decision. It has no side effects.
func (g *Guard) Decide(state GuardState, to nav.RouteRequest) nav.Decision {
	if token := to.Query.Get(g.tokenParam); token != "" {
		d := nav.ReplaceWith(nav.RouteRequest{Path: to.Path, Query: url.Values{}})
		d.ImportToken = token
		return d
	}

	if state.HasToken {
		switch {
		case to.Path == g.loginPath:
			return nav.RedirectPath(g.rootPath).Ending()
		case g.allow.Match(to.Path):
			return nav.Allow()
		case state.RolesLoaded:
			return nav.Allow()
		default:
			return nav.Decision{Kind: nav.DecisionBootstrap, Target: to}
		}
	}

	if g.allow.Match(to.Path) {
		return nav.Allow()
	}
	return nav.RedirectPath(g.landingPath).
		WithNotice(nav.NoticeWarning, LoginRequiredMessage).
		Ending()
}

// State reads the guard state for token.
func (g *Guard) State(token string) GuardState {
	if token == "" {
		return GuardState{}
	}
	st := GuardState{HasToken: true}
	if sc, ok := g.sessions.Lookup(token); ok {
		st.RolesLoaded = sc.RolesLoaded()
	}
	return st
}

// BeforeEach is the router hook. It decides, applies side effects to the client
// surfaces, and calls next exactly once.
func (g *Guard) BeforeEach(ctx context.Context, client router.Client, to, _ nav.RouteRequest, next router.Next) {
	if client.Progress != nil {
		client.Progress.Start(ctx, to)
	}

	token := clientToken(ctx, client)
	d := g.Decide(g.State(token), to)

	if d.ImportToken != "" {
		g.importToken(ctx, client, d.ImportToken)
		g.apply(ctx, client, d, next)
		return
	}

	if token != "" && to.Meta.Title != "" && client.Titles != nil {
		client.Titles.SetTitle(ctx, to.Meta.Title)
	}

	if d.Kind == nav.DecisionBootstrap {
		g.bootstrapAndContinue(ctx, client, token, to, next)
		return
	}
	g.apply(ctx, client, d, next)
}

// AfterEach is the router hook run once a navigation completes.
func (g *Guard) AfterEach(ctx context.Context, client router.Client, _, _ nav.RouteRequest) {
	if client.Progress != nil {
		client.Progress.Done(ctx)
	}
}

// EnsureSession returns the bootstrapped session context for token, running the
// bootstrap when needed. A failed bootstrap logs the session out unless the
// failure is only ctx ending.
func (g *Guard) EnsureSession(ctx context.Context, token string) (*session.Context, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if sc, ok := g.sessions.Lookup(token); ok && sc.RolesLoaded() {
		return sc, nil
	}
	sc, err := g.Bootstrap(ctx, token)
	if err != nil {
		if !callerGone(ctx, err) {
			g.logout(ctx, token)
		}
		return nil, err
	}
	return sc, nil
}

// Bootstrap fetches the identity for token, generates its routes and installs
// both into the token's session context. Concurrent calls for one token share
// a single run, which is detached from any one caller's cancellation and
// bounded only by the configured bootstrap timeout.
func (g *Guard) Bootstrap(ctx context.Context, token string) (*session.Context, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.flight.DoChan(token, func() (any, error) {
		return g.bootstrap(shared, token)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		sc, _ := res.Val.(*session.Context)
		return sc, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bootstrap session: %w", ctx.Err())
	}
}

func (g *Guard) bootstrap(ctx context.Context, token string) (*session.Context, error) {
	sc := g.sessions.Acquire(token)
	if sc.RolesLoaded() {
		return sc, nil
	}
	defer sc.Pin()()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := g.now()
	sc.SetRelogin(true)
	identity, err := g.identities.FetchIdentity(ctx, token)
	sc.SetRelogin(false)
	if err != nil {
		g.emitBootstrap(start, 0, err)
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	identity = identity.WithDefaultRole()

	routes, err := g.routes.GenerateRoutes(ctx, identity)
	if err != nil {
		g.emitBootstrap(start, 0, err)
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	added := sc.Install(identity, routes)
	g.emitBootstrap(start, added, nil)
	g.logger.InfoContext(ctx, "session bootstrapped",
		"user_name", identity.User.UserName,
		"roles", len(identity.Roles),
		"routes", added,
		"duration_ms", g.now().Sub(start).Milliseconds(),
	)
	return sc, nil
}

func (g *Guard) bootstrapAndContinue(
	ctx context.Context,
	client router.Client,
	token string,
	to nav.RouteRequest,
	next router.Next,
) {
	if _, err := g.Bootstrap(ctx, token); err != nil {
		if callerGone(ctx, err) {
			g.logger.DebugContext(ctx, "navigation abandoned during bootstrap", "path", to.Path, "error", err)
			next(nav.Deny())
			return
		}
		g.logger.WarnContext(ctx, "session bootstrap failed", "path", to.Path, "error", err)
		g.logout(ctx, token)
		if client.Tokens != nil {
			if clearErr := client.Tokens.Clear(ctx); clearErr != nil {
				g.logger.WarnContext(ctx, "clear session token", "error", clearErr)
			}
		}
		g.apply(ctx, client, nav.RedirectPath(g.rootPath).WithNotice(nav.NoticeError, err.Error()), next)
		return
	}
	next(nav.ReplaceWith(to))
}

// callerGone reports whether err is just ctx ending. The session itself is
// still valid then and must not be logged out.
func callerGone(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}

// logout ends the server-side session and drops the local context.
func (g *Guard) logout(ctx context.Context, token string) {
	if err := g.identities.Logout(context.WithoutCancel(ctx), token); err != nil {
		g.logger.WarnContext(ctx, "logout after failed bootstrap", "error", err)
	}
	g.sessions.Remove(token)
}

func (g *Guard) importToken(ctx context.Context, client router.Client, token string) {
	if client.Tokens == nil {
		return
	}
	if err := client.Tokens.Set(ctx, token); err != nil {
		g.logger.WarnContext(ctx, "store imported session token", "error", err)
	}
}

func (g *Guard) apply(ctx context.Context, client router.Client, d nav.Decision, next router.Next) {
	if d.Notice != nil && client.Notices != nil {
		client.Notices.Notify(ctx, *d.Notice)
	}
	next(d)
	if d.EndProgress && client.Progress != nil {
		client.Progress.Done(ctx)
	}
}

func (g *Guard) emitBootstrap(start time.Time, routes int, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitBootstrap(g.metrics, metrics.BootstrapMetric{
		Result:   result,
		Routes:   routes,
		Duration: g.now().Sub(start),
		Err:      err,
	})
}

func clientToken(ctx context.Context, client router.Client) string {
	if client.Tokens == nil {
		return ""
	}
	token, ok := client.Tokens.Get(ctx)
	if !ok {
		return ""
	}
	return token
}
