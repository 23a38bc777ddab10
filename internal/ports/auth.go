// Package ports defines interfaces (hexagonal ports) for auth and navigation behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/target/navguard/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated principal.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Principal, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// UpsertUserInput carries the profile written on login.
type UpsertUserInput struct {
	Subject  string
	UserName string
	NickName string
	Email    string
	RoleKey  string // granted role key; empty grants nothing
}

// UserRepository loads and records application users.
type UserRepository interface {
	GetBySubject(ctx context.Context, subject string) (*domainauth.User, error)
	ListRoleKeys(ctx context.Context, userID int64) ([]string, error)
	ListPermissions(ctx context.Context, userID int64) ([]string, error)
	Upsert(ctx context.Context, in UpsertUserInput) (*domainauth.User, error)
}
