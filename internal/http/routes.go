// Package httpx is the HTTP surface of navguard: the navigation guard for SPA
// page requests, the session API the SPA bootstraps from, and the login flow.
package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/target/navguard/internal/observability/statsd"
	"github.com/target/navguard/internal/router"
	"github.com/target/navguard/internal/session"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Guard  SessionGuard
	Router *router.Router
	// Auth is optional; without it the /auth endpoints are not registered.
	Auth     AuthServiceInterface
	Sessions *session.Manager

	Shell  []byte
	Static fs.FS // optional, served under /static/

	Cookies CookieSettings
	// SignedOutPath is where a browser lands after logout.
	SignedOutPath string
	TokenTTL      time.Duration
	Metrics       statsd.Sink
	Logger        *slog.Logger
}

// NewRouter creates and configures the HTTP handler.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	requireSession := RequireSession(services.Guard, logger)
	var navHandlers NavHandlers
	mux.Handle("GET /api/getInfo", requireSession(http.HandlerFunc(navHandlers.GetInfo)))
	mux.Handle("GET /api/getRouters", requireSession(http.HandlerFunc(navHandlers.GetRouters)))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:           services.Auth,
			Sessions:      services.Sessions,
			Cookies:       services.Cookies,
			SignedOutPath: services.SignedOutPath,
			Logger:        logger,
		})
	}

	if services.Static != nil {
		mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(services.Static))))
	}

	pages := NavigationGuard(NavigationOptions{
		Router:   services.Router,
		Shell:    services.Shell,
		Cookies:  services.Cookies,
		TokenTTL: services.TokenTTL,
		Metrics:  services.Metrics,
		Logger:   logger,
	})
	return pageOrNext(pages, mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// hashedFilePattern matches content-hashed build output such as app.abc123ef.js.
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders caches hashed assets for a year and nothing else.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
