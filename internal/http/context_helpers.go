package httpx

import (
	"context"

	"github.com/target/navguard/internal/session"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session context.
// If sc is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, sc *session.Context) context.Context {
	if sc == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sc)
}

// SessionFromContext returns the bootstrapped session context of the request.
func SessionFromContext(ctx context.Context) (*session.Context, bool) {
	sc, ok := ctx.Value(sessionKey{}).(*session.Context)
	return sc, ok && sc != nil
}
