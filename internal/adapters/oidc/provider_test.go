package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/navguard/internal/ports"
)

// fakeIdP serves discovery, token and userinfo endpoints.
type fakeIdP struct {
	srv      *httptest.Server
	userinfo map[string]any
	tokenErr bool
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	f := &fakeIdP{userinfo: map[string]any{
		"sub":         "alice-sub",
		"given_name":  "Alice",
		"family_name": "Anders",
		"email":       "alice@example.com",
		"groups":      []string{"nav-users"},
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                 f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/authorize",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
			"jwks_uri":               f.srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		if f.tokenErr {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		writeJSON(w, map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, f.userinfo)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeIdP) provider(t *testing.T, scope string) *Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		ClientID:     "navguard",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        scope,
		DiscoveryURL: f.srv.URL + "/.well-known/openid-configuration",
		HTTPClient:   f.srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	valid := ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://x"}
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		errMsg string
	}{
		{"missing client ID", func(c *ProviderConfig) { c.ClientID = "" }, "client ID is required"},
		{"missing client secret", func(c *ProviderConfig) { c.ClientSecret = "" }, "client secret is required"},
		{"missing redirect URL", func(c *ProviderConfig) { c.RedirectURL = "" }, "redirect URL is required"},
		{"missing discovery URL", func(c *ProviderConfig) { c.DiscoveryURL = "" }, "discovery URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewProvider(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider(t, "openid profile email")

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"})
	require.NoError(t, err)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange_UserInfo(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider(t, "profile email")
	before := time.Now()

	principal, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "code", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "alice-sub", principal.UserID)
	assert.Equal(t, "Alice", principal.FirstName)
	assert.Equal(t, "Anders", principal.LastName)
	assert.Equal(t, "alice@example.com", principal.Email)
	assert.Equal(t, []string{"nav-users"}, principal.Groups)
	assert.WithinDuration(t, before.Add(time.Hour), principal.ExpiresAt, time.Minute)
}

func TestProvider_Exchange_ADClaims(t *testing.T) {
	idp := newFakeIdP(t)
	idp.userinfo = map[string]any{
		"sub":            "opaque",
		"samaccountname": "z001234",
		"firstname":      "Zed",
		"mail":           "zed@corp.example.com",
		"memberof":       []string{"APP-NAV-ADMINS"},
	}
	p := idp.provider(t, "profile")

	principal, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "code", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "z001234", principal.UserID)
	assert.Equal(t, "Zed", principal.FirstName)
	assert.Equal(t, "zed@corp.example.com", principal.Email)
	assert.Equal(t, []string{"APP-NAV-ADMINS"}, principal.Groups)
}

func TestProvider_Exchange_Errors(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider(t, "openid profile")
	ctx := context.Background()

	for _, in := range []ports.ExchangeInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := p.Exchange(ctx, in)
		require.Error(t, err)
	}

	_, err := p.Exchange(ctx, ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")

	idp.tokenErr = true
	_, err = p.Exchange(ctx, ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestClaims_Merge(t *testing.T) {
	c := claims{Sub: "id", Groups: []string{"a"}}.merge(claims{Sub: "other", Email: "e@x", Groups: []string{"b"}, GivenName: "G"})
	assert.Equal(t, "id", c.userID())
	assert.Equal(t, "e@x", c.email())
	assert.Equal(t, []string{"a"}, c.groups())
	assert.Equal(t, "G", c.principal(time.Time{}).FirstName)
}
