package service

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/navguard/internal/domain/auth"
)

func newTestIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerOptions{Secret: "test-secret", TTL: time.Hour, Issuer: "navguard"})
	require.NoError(t, err)
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(TokenIssuerOptions{})
	require.Error(t, err)
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, exp, err := issuer.Issue(domainauth.Session{ID: "sess-1", UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "navguard", claims.Issuer)
}

func TestTokenIssuer_ExpiryFollowsSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	_, exp, err := issuer.Issue(domainauth.Session{ID: "sess-1", ExpiresAt: now.Add(10 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), exp)
}

func TestTokenIssuer_ParseRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)
	token, _, err := issuer.Issue(domainauth.Session{ID: "sess-1"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestIssuer(t, now.Add(2*time.Hour))
		_, err := later.Parse(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenIssuerOptions{Secret: "other"})
		require.NoError(t, err)
		other.now = func() time.Time { return now }
		_, err = other.Parse(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := issuer.Parse("")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing session id", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
		raw, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, signErr)
		_, err := issuer.Parse(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
