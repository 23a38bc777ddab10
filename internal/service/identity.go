package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
	"golang.org/x/sync/errgroup"
)

// IdentityServiceOptions groups dependencies for IdentityService.
type IdentityServiceOptions struct {
	Tokens   *TokenIssuer
	Sessions ports.SessionStore
	Users    ports.UserRepository
	Logger   *slog.Logger
}

// IdentityService resolves session tokens to user identities.
type IdentityService struct {
	tokens   *TokenIssuer
	sessions ports.SessionStore
	users    ports.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.IdentityStore = (*IdentityService)(nil)

// NewIdentityService constructs an IdentityService.
func NewIdentityService(opts IdentityServiceOptions) *IdentityService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		tokens:   opts.Tokens,
		sessions: opts.Sessions,
		users:    opts.Users,
		logger:   logger.With("component", "identity_service"),
		now:      time.Now,
	}
}

// FetchIdentity verifies token, loads its session and returns the user with
// roles and permissions.
func (s *IdentityService) FetchIdentity(ctx context.Context, token string) (domainauth.Identity, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return s.IdentityForSubject(ctx, sess.UserID)
}

// IdentityForSubject loads the user with the IdP subject together with its
// roles and permissions.
func (s *IdentityService) IdentityForSubject(ctx context.Context, subject string) (domainauth.Identity, error) {
	user, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("load user: %w", err)
	}

	var roles, perms []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var lerr error
		roles, lerr = s.users.ListRoleKeys(gctx, user.ID)
		if lerr != nil {
			return fmt.Errorf("load roles: %w", lerr)
		}
		return nil
	})
	g.Go(func() error {
		var lerr error
		perms, lerr = s.users.ListPermissions(gctx, user.ID)
		if lerr != nil {
			return fmt.Errorf("load permissions: %w", lerr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domainauth.Identity{}, err
	}

	identity := domainauth.Identity{User: *user, Roles: roles, Permissions: perms}
	if identity.IsAdmin() {
		identity.Permissions = []string{domainauth.PermissionAll}
	}
	return identity.WithDefaultRole(), nil
}

// Logout deletes the session behind token. Tokens that do not verify are ignored.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Session returns the live session behind token.
func (s *IdentityService) Session(ctx context.Context, token string) (domainauth.Session, error) {
	return s.session(ctx, token)
}

func (s *IdentityService) session(ctx context.Context, token string) (domainauth.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domainauth.Session{}, err
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		if delErr := s.sessions.Delete(ctx, sess.ID); delErr != nil {
			return domainauth.Session{}, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", delErr))
		}
		return domainauth.Session{}, errSessionExpired
	}
	return sess, nil
}
