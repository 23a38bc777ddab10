package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/service"
	"github.com/target/navguard/internal/session"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	SessionForToken(ctx context.Context, token string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc AuthServiceInterface
	// Sessions is optional; when set, logout drops the token's session context
	// and status reports whether a bootstrap is in flight.
	Sessions *session.Manager
	Cookies  CookieSettings
	// SignedOutPath is where a browser lands after logout. Defaults to "/login".
	SignedOutPath string
	Logger        *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	for _, c := range []cookieSpec{
		{Name: oauthStateCookie, Value: result.State},
		{Name: oauthNonceCookie, Value: result.Nonce},
		{Name: postLoginRedirect, Value: redirectURI},
	} {
		c.MaxAge, c.HTTPOnly = oauthCookieMaxAge, true
		h.Cookies.set(w, r, c)
	}
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the code flow, stores the session token cookie and
// returns the browser to where it started.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	switch {
	case code == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code", Err: errors.New("authorization code is required")})
		return
	case state == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_state", Err: errors.New("state parameter is required")})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state", Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce", Err: errors.New("missing nonce parameter")})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_completion_failed", Err: err})
		return
	}
	if result.Token == "" {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_completion_failed", Err: errors.New("no session token issued")})
		return
	}

	h.Cookies.set(w, r, cookieSpec{
		Name:   TokenCookieName,
		Value:  result.Token,
		MaxAge: int(time.Until(result.ExpiresAt).Seconds()),
	})
	h.Cookies.clear(w, r, oauthStateCookie, true)
	h.Cookies.clear(w, r, oauthNonceCookie, true)

	redirectURI := "/"
	if c, cerr := r.Cookie(postLoginRedirect); cerr == nil {
		redirectURI = safeRedirectPath(c.Value)
		h.Cookies.clear(w, r, postLoginRedirect, true)
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout ends the session behind the request's token and clears the cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := requestToken(r); token != "" {
		if sess, err := h.Svc.SessionForToken(r.Context(), token); err == nil {
			if logoutErr := h.Svc.Logout(r.Context(), sess.ID); logoutErr != nil {
				h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
			}
		}
		if h.Sessions != nil {
			h.Sessions.Remove(token)
		}
	}
	h.Cookies.clear(w, r, TokenCookieName, false)

	target := h.SignedOutPath
	if target == "" {
		target = service.DefaultLoginPath
	}
	if redirectURI := r.FormValue("redirect_uri"); redirectURI != "" {
		u := url.URL{Path: target, RawQuery: url.Values{"redirect": {safeRedirectPath(redirectURI)}}.Encode()}
		target = u.String()
	}

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "msg": "ok", "redirect_to": target})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	if token == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	sess, err := h.Svc.SessionForToken(r.Context(), token)
	if err != nil {
		h.Cookies.clear(w, r, TokenCookieName, false)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	var relogin, rolesLoaded bool
	if h.Sessions != nil {
		if sc, ok := h.Sessions.Lookup(token); ok {
			relogin, rolesLoaded = sc.ReloginInProgress(), sc.RolesLoaded()
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":         sess.UserID,
			"first_name": sess.FirstName,
			"last_name":  sess.LastName,
			"email":      sess.Email,
			"role":       sess.Role,
		},
		"expires_at":          sess.ExpiresAt,
		"roles_loaded":        rolesLoaded,
		"relogin_in_progress": relogin,
	})
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return "/"
	}
	return candidate
}
