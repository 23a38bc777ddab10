package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	Users    ports.UserRepository
	Tokens   *TokenIssuer
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping,
// user records, session persistence and session token issuance.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	users    ports.UserRepository
	tokens   *TokenIssuer
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		users:    opts.Users,
		tokens:   opts.Tokens,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
	User    *domainauth.User
	// Token is the signed session token handed to the client.
	Token     string
	ExpiresAt time.Time
}

// CompleteLogin exchanges the code for a principal, maps its role, records the
// user, persists a session and issues its token.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	switch {
	case input.Code == "":
		return nil, errors.New("authorization code is required")
	case input.State == "":
		return nil, errors.New("state parameter is required")
	case input.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	principal, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := s.roles.Map(principal.Groups)

	var user *domainauth.User
	if s.users != nil {
		user, err = s.users.Upsert(ctx, ports.UpsertUserInput{
			Subject:  principal.UserID,
			UserName: userName(principal),
			NickName: principal.DisplayName(),
			Email:    principal.Email,
			RoleKey:  role.RoleKey(),
		})
		if err != nil {
			return nil, fmt.Errorf("record user: %w", err)
		}
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    principal.UserID,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		Email:     principal.Email,
		Role:      role,
		ExpiresAt: principal.ExpiresAt,
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	res := &CompleteLoginResult{Session: session, User: user, ExpiresAt: session.ExpiresAt}
	if s.tokens != nil {
		token, exp, tokErr := s.tokens.Issue(session)
		if tokErr != nil {
			return nil, fmt.Errorf("issue session token: %w", tokErr)
		}
		res.Token, res.ExpiresAt = token, exp
	}
	return res, nil
}

// userName derives a login name from the principal.
func userName(p domainauth.Principal) string {
	if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
		return local
	}
	return p.UserID
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// SessionForToken verifies token and returns the live session behind it.
func (s *AuthService) SessionForToken(ctx context.Context, token string) (*domainauth.Session, error) {
	if s.tokens == nil {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, claims.SessionID)
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
