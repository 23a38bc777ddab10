package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/navguard/internal/domain/nav"
	apperrors "github.com/target/navguard/internal/errors"
	"github.com/target/navguard/internal/session"
)

// SessionGuard bootstraps the session behind a token.
type SessionGuard interface {
	EnsureSession(ctx context.Context, token string) (*session.Context, error)
}

// RequireSession returns a middleware that bootstraps the session of the
// request's token and stores it in the request context. Requests without a
// usable session get a 401 JSON response.
func RequireSession(guard SessionGuard, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, err := guard.EnsureSession(r.Context(), requestToken(r))
			if err != nil {
				status := sessionErrorStatus(err)
				if status != http.StatusUnauthorized {
					logger.WarnContext(r.Context(), "session bootstrap failed", "path", r.URL.Path, "error", err)
				}
				WriteError(w, ErrorParams{
					Code:    status,
					ErrCode: "authentication_required",
					Err:     errors.New("login state has expired, please log in again"),
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sc)))
		})
	}
}

// sessionErrorStatus maps a failed bootstrap to a status. Timeouts and
// cancellation keep their own status so clients can retry; every other
// failure reads as 401. A request that went away has not ended the session.
func sessionErrorStatus(err error) int {
	switch status := apperrors.HTTPStatus(apperrors.MapDBError(err)); status {
	case http.StatusGatewayTimeout, statusClientClosedRequest:
		return status
	default:
		return http.StatusUnauthorized
	}
}

const statusClientClosedRequest = 499

// NavHandlers serves the identity and route table of the current session.
type NavHandlers struct{}

// GetInfo returns the user, role keys and permissions of the session.
// GET /api/getInfo.
func (NavHandlers) GetInfo(w http.ResponseWriter, r *http.Request) {
	sc, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required"})
		return
	}
	identity, ok := sc.Identity()
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"code":        http.StatusOK,
		"msg":         "ok",
		"user":        identity.User,
		"roles":       identity.Roles,
		"permissions": identity.Permissions,
	})
}

// GetRouters returns the route table generated for the session, external
// links included.
// GET /api/getRouters.
func (NavHandlers) GetRouters(w http.ResponseWriter, r *http.Request) {
	sc, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required"})
		return
	}
	routes := sc.Routes()
	if routes == nil {
		routes = []nav.Route{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"code": http.StatusOK,
		"msg":  "ok",
		"data": routes,
	})
}
