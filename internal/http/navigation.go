package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/observability/metrics"
	"github.com/target/navguard/internal/observability/statsd"
	"github.com/target/navguard/internal/router"
	"github.com/target/navguard/internal/service"
)

// NavigationOptions configures NavigationGuard.
type NavigationOptions struct {
	Router *router.Router
	// Shell is the SPA entry document served for every allowed page.
	Shell   []byte
	Cookies CookieSettings
	// TokenTTL is the max age of a token cookie written on import.
	TokenTTL time.Duration
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// NavigationGuard runs each SPA page request through the router as a
// navigation and turns the outcome into an HTTP response: the shell for an
// allowed page, a 302 for a redirected one, 403 for an aborted one and 404
// when nothing resolves the path.
func NavigationGuard(opts NavigationOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nav_http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if clean := cleanPagePath(r.URL.Path); clean != r.URL.Path {
			target := url.URL{Path: clean, RawQuery: r.URL.RawQuery}
			http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
			return
		}
		client := router.Client{
			Tokens:   newCookieTokenStore(w, r, opts.Cookies, opts.TokenTTL),
			Progress: metrics.NewNavigationProgress(opts.Metrics),
			Titles:   headerTitleSink{w: w},
			Notices:  flashNotifier{w: w, r: r, cookies: opts.Cookies},
		}
		to := nav.RouteRequest{Path: r.URL.Path, Query: r.URL.Query()}

		res := opts.Router.Navigate(ctx, client, to)
		switch res.Status {
		case router.StatusAborted:
			logger.WarnContext(ctx, "navigation aborted", "path", to.Path, "hops", res.Hops, "error", res.Err)
			status := http.StatusForbidden
			if errors.Is(res.Err, router.ErrTooManyRedirects) {
				status = http.StatusLoopDetected
			}
			http.Error(w, http.StatusText(status), status)
		case router.StatusRedirected:
			http.Redirect(w, r, safeRedirectPath(res.Final.URL()), http.StatusFound)
		default:
			if res.Matched == nil {
				serveShell(w, r, opts.Shell, http.StatusNotFound)
				return
			}
			if target := routeRedirect(*res.Matched); target != "" && target != res.Final.Path {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			serveShell(w, r, opts.Shell, http.StatusOK)
		}
	})
}

// cleanPagePath collapses repeated and dot segments so a page path can never
// read as a scheme-relative URL once it is echoed into a Location header.
func cleanPagePath(p string) string {
	trimmed := strings.TrimLeft(p, "/\\")
	return path.Clean("/" + trimmed)
}

// routeRedirect returns the same-origin path a matched route forwards to.
func routeRedirect(rt nav.Route) string {
	if rt.Redirect == "" || rt.Redirect == service.RedirectNone || !strings.HasPrefix(rt.Redirect, "/") {
		return ""
	}
	return safeRedirectPath(rt.Redirect)
}

func serveShell(w http.ResponseWriter, r *http.Request, shell []byte, status int) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(shell); err != nil {
		return
	}
}

// pageOrNext routes SPA page requests to pages and everything else to next.
func pageOrNext(pages, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPageRequest(r) {
			pages.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
