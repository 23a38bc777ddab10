package config

import (
	"strings"
	"time"
)

// Default guard values, matching the stock admin SPA layout.
const (
	DefaultLoginPath   = "/login"
	DefaultRootPath    = "/"
	DefaultLandingPath = "/index"
	DefaultTokenParam  = "token"
)

// GuardConfig controls the navigation guard. All variables carry the GUARD_ prefix.
type GuardConfig struct {
	// AllowList holds paths reachable without a token. Entries may use * and ** wildcards.
	AllowList []string `env:"ALLOW_LIST" envDefault:"/login,/register,/index,/"`

	LoginPath   string `env:"LOGIN_PATH"   envDefault:"/login"`
	RootPath    string `env:"ROOT_PATH"    envDefault:"/"`
	LandingPath string `env:"LANDING_PATH" envDefault:"/index"`

	// TokenParam is the query parameter a token can be imported from.
	TokenParam string `env:"TOKEN_PARAM" envDefault:"token"`

	// BootstrapTimeout bounds the identity fetch plus route generation. Zero waits forever.
	BootstrapTimeout time.Duration `env:"BOOTSTRAP_TIMEOUT" envDefault:"0s"`

	// MaxRedirects caps the redirect hops of one navigation.
	MaxRedirects int `env:"MAX_REDIRECTS" envDefault:"10"`

	// SessionIdleTTL evicts session contexts that were not used for this long. Zero keeps them.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// SweepInterval is how often idle session contexts are evicted.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

// Sanitize normalises paths and clamps numeric values.
func (g *GuardConfig) Sanitize() {
	allow := g.AllowList[:0]
	for _, p := range g.AllowList {
		if p = strings.TrimSpace(p); p != "" {
			allow = append(allow, p)
		}
	}
	g.AllowList = allow

	g.LoginPath = normalizePath(g.LoginPath, DefaultLoginPath)
	g.RootPath = normalizePath(g.RootPath, DefaultRootPath)
	g.LandingPath = normalizePath(g.LandingPath, DefaultLandingPath)
	g.TokenParam = strings.TrimSpace(g.TokenParam)

	if g.BootstrapTimeout < 0 {
		g.BootstrapTimeout = 0
	}
	if g.MaxRedirects < 1 {
		g.MaxRedirects = 10
	}
	if g.SessionIdleTTL < 0 {
		g.SessionIdleTTL = 0
	}
	if g.SweepInterval <= 0 {
		g.SweepInterval = time.Minute
	}
}

func normalizePath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
