package service

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/navguard/internal/domain/auth"
)

// DefaultTokenTTL is the session token lifetime used when none is configured.
const DefaultTokenTTL = 12 * time.Hour

var (
	// ErrInvalidToken is returned for tokens that fail parsing or verification.
	ErrInvalidToken = errors.New("invalid session token")

	errTokenSecretMissing = errors.New("token secret is required")
)

// Claims is the payload of a session token. SessionID points at the server-side session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenIssuerOptions configures a TokenIssuer.
type TokenIssuerOptions struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// NewTokenIssuer builds a TokenIssuer.
func NewTokenIssuer(opts TokenIssuerOptions) (*TokenIssuer, error) {
	if opts.Secret == "" {
		return nil, errTokenSecretMissing
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(opts.Secret), ttl: ttl, issuer: opts.Issuer, now: time.Now}, nil
}

// Issue signs a token for sess. The token expires with the session or after the
// issuer TTL, whichever comes first.
func (t *TokenIssuer) Issue(sess domainauth.Session) (string, time.Time, error) {
	if sess.ID == "" {
		return "", time.Time{}, errors.New("session ID is required")
	}
	now := t.now()
	expiresAt := now.Add(t.ttl)
	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(expiresAt) {
		expiresAt = sess.ExpiresAt
	}

	claims := &Claims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns its claims.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
