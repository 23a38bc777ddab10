package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the Admin-Token and notice cookies.
	// Leave empty to use the request host, or set "auto" to derive the
	// registrable domain of the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// SignedOutPath is where the browser lands after logout. Defaults to the login page.
	SignedOutPath string `env:"APP_SIGNED_OUT_PATH" envDefault:""`

	// CompressionEnabled enables gzip compression for text-based responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
}
