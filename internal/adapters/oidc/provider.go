// Package oidc provides an OpenID Connect AuthProvider.
package oidc

import (
	"cmp"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider using OIDC discovery and the OAuth2 code flow.
type Provider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	now          func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer or its .well-known/openid-configuration URL.
	DiscoveryURL string
	HTTPClient   *http.Client // optional; 30s timeout client when nil
}

// NewProvider creates a new OIDC provider. It fetches the discovery document once.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(gooidc.ClientContext(context.Background(), httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		now:          time.Now,
	}, nil
}

// Begin returns the IdP authorization URL with a fresh state and nonce.
// The redirect_uri stays the configured one; the IdP matches it exactly.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, nonce := rand.Text(), rand.Text()
	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange trades the code for tokens and builds the principal from the ID
// token, filling gaps from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Principal, error) {
	switch {
	case in.Code == "":
		return domainauth.Principal{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Principal{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Principal{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if p.hasOpenIDScope() {
		if c, err = p.idTokenClaims(ctx, token, in.Nonce); err != nil {
			return domainauth.Principal{}, fmt.Errorf("extract id_token: %w", err)
		}
	}
	if c.userID() == "" || c.email() == "" {
		ui, uiErr := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uiErr != nil {
			return domainauth.Principal{}, fmt.Errorf("get user info: %w", uiErr)
		}
		var extra claims
		if claimsErr := ui.Claims(&extra); claimsErr != nil {
			return domainauth.Principal{}, fmt.Errorf("decode user info: %w", claimsErr)
		}
		c = c.merge(extra)
	}
	if c.userID() == "" {
		return domainauth.Principal{}, errors.New("identity provider returned no subject")
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = p.now().Add(time.Hour)
	}
	return c.principal(expiresAt), nil
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims{}, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("invalid nonce")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return c, nil
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.config.Scopes, gooidc.ScopeOpenID)
}

// claims is the union of standard OIDC claims and the AD/ADFS shape.
// AD claims take precedence when both are present.
type claims struct {
	Sub            string   `json:"sub"`
	SamAccountName string   `json:"samaccountname"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	Email          string   `json:"email"`
	Mail           string   `json:"mail"`
	Groups         []string `json:"groups"`
	MemberOf       []string `json:"memberof"`
}

func (c claims) userID() string { return cmp.Or(c.SamAccountName, c.Sub) }
func (c claims) email() string  { return cmp.Or(c.Mail, c.Email) }

func (c claims) groups() []string {
	if len(c.MemberOf) > 0 {
		return c.MemberOf
	}
	return c.Groups
}

// merge fills fields of c that are empty from other.
func (c claims) merge(other claims) claims {
	c.Sub = cmp.Or(c.Sub, other.Sub)
	c.SamAccountName = cmp.Or(c.SamAccountName, other.SamAccountName)
	c.GivenName = cmp.Or(c.GivenName, other.GivenName)
	c.FamilyName = cmp.Or(c.FamilyName, other.FamilyName)
	c.FirstName = cmp.Or(c.FirstName, other.FirstName)
	c.LastName = cmp.Or(c.LastName, other.LastName)
	c.Email = cmp.Or(c.Email, other.Email)
	c.Mail = cmp.Or(c.Mail, other.Mail)
	if len(c.groups()) == 0 {
		c.Groups, c.MemberOf = other.Groups, other.MemberOf
	}
	return c
}

func (c claims) principal(expiresAt time.Time) domainauth.Principal {
	return domainauth.Principal{
		UserID:    c.userID(),
		FirstName: cmp.Or(c.FirstName, c.GivenName),
		LastName:  cmp.Or(c.LastName, c.FamilyName),
		Email:     c.email(),
		Groups:    slices.Clone(c.groups()),
		ExpiresAt: expiresAt,
	}
}
