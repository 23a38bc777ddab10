package devauth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/target/navguard/internal/ports"
)

func TestNewProvider_Validation(t *testing.T) {
	if _, err := NewProvider(Config{Email: "dev@example.com"}); err == nil {
		t.Fatal("expected error without UserID")
	}
	if _, err := NewProvider(Config{UserID: "dev"}); err == nil {
		t.Fatal("expected error without Email")
	}
}

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", Groups: []string{"users"}})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prov.now = func() time.Time { return fixed }

	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback?next=%2Fsystem"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("authURL does not parse: %v", err)
	}
	if u.Path != "/auth/callback" || u.Query().Get("code") != "dev" || u.Query().Get("state") != state {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
	if u.Query().Get("next") != "/system" {
		t.Fatalf("existing query lost: %s", authURL)
	}
	if state == "" || nonce == "" || state == nonce {
		t.Fatal("state and nonce should be generated independently")
	}

	p, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if p.UserID != "dev-user" || p.Email != "dev@example.com" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if !p.ExpiresAt.Equal(fixed.Add(8 * time.Hour)) {
		t.Fatalf("ExpiresAt = %v", p.ExpiresAt)
	}
	p.Groups[0] = "mutated"
	again, _ := prov.Exchange(context.Background(), ports.ExchangeInput{})
	if again.Groups[0] != "users" {
		t.Fatal("Exchange should return a copy of the groups")
	}
}

func TestProvider_BeginDefaultCallback(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev", Email: "dev@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	authURL, _, _, err := prov.Begin(context.Background(), ports.BeginInput{})
	if err != nil {
		t.Fatal(err)
	}
	if u, _ := url.Parse(authURL); u.Path != DefaultCallbackPath {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
}
