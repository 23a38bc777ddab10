// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

// DefaultCallbackPath is used when Begin is called without a redirect URL.
const DefaultCallbackPath = "/auth/callback"

// Config controls the dev auth provider behavior.
// UserID and Email are required.
type Config struct {
	UserID          string
	FirstName       string
	LastName        string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development. Begin
// redirects straight back to the callback with a locally generated state, and
// Exchange ignores the code and returns the configured principal.
type Provider struct {
	mu        sync.Mutex
	principal domainauth.Principal
	duration  time.Duration
	now       func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		principal: domainauth.Principal{
			UserID:    cfg.UserID,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
			Groups:    append([]string(nil), cfg.Groups...),
		},
		duration: dur,
		now:      time.Now,
	}, nil
}

// Begin returns the callback URL carrying a dev code and fresh state, plus a nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	target := in.RedirectURL
	if target == "" {
		target = DefaultCallbackPath
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", "", "", fmt.Errorf("parse redirect URL: %w", err)
	}

	state, nonce := rand.Text(), rand.Text()
	q := u.Query()
	q.Set("code", "dev")
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), state, nonce, nil
}

// Exchange returns the configured principal with an expiry starting now.
// State and nonce are verified by the HTTP handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.principal
	out.Groups = append([]string(nil), p.principal.Groups...)
	out.ExpiresAt = p.now().Add(p.duration)
	return out, nil
}
