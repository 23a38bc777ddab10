package httpx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
	"golang.org/x/net/publicsuffix"
)

// Cookie and header names shared with the SPA.
const (
	TokenCookieName  = "Admin-Token"
	NoticeCookieName = "nav_notice"
	TitleHeader      = "X-Page-Title"

	oauthStateCookie   = "oauth_state"
	oauthNonceCookie   = "oauth_nonce"
	postLoginRedirect  = "post_login_redirect"
	oauthCookieMaxAge  = 600
	noticeCookieMaxAge = 60
)

// CookieDomainAuto derives the cookie domain from the request host.
const CookieDomainAuto = "auto"

// CookieSettings controls the attributes of cookies the server writes.
type CookieSettings struct {
	// Domain is the cookie domain. Empty scopes cookies to the request host;
	// CookieDomainAuto scopes them to the host's registrable domain.
	Domain string
}

// DeriveCookieDomain returns the registrable domain (eTLD+1) of host.
// IP addresses, single-label hosts and public suffixes yield "".
func DeriveCookieDomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return etld1
}

func (c CookieSettings) domainFor(r *http.Request) string {
	if c.Domain == CookieDomainAuto {
		return DeriveCookieDomain(r.Host)
	}
	return c.Domain
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// cookieSpec groups the per-cookie attributes of set.
type cookieSpec struct {
	Name     string
	Value    string
	MaxAge   int
	HTTPOnly bool
}

func (c CookieSettings) set(w http.ResponseWriter, r *http.Request, s cookieSpec) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    s.Value,
		Path:     "/",
		Domain:   c.domainFor(r),
		HttpOnly: s.HTTPOnly,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.MaxAge,
	})
}

// clear expires a cookie, mirroring the attributes it was set with.
func (c CookieSettings) clear(w http.ResponseWriter, r *http.Request, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.domainFor(r),
		HttpOnly: httpOnly,
		Secure:   isSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// requestToken returns the session token presented with r: a bearer
// Authorization header first, then the token cookie.
func requestToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// cookieTokenStore is the token store of one request. Writes go to the
// response and are visible to later reads within the same request.
// The cookie is readable by the SPA, which sends it back as a bearer token.
type cookieTokenStore struct {
	w       http.ResponseWriter
	r       *http.Request
	cookies CookieSettings
	maxAge  int
	token   string
}

var _ ports.TokenStore = (*cookieTokenStore)(nil)

func newCookieTokenStore(w http.ResponseWriter, r *http.Request, cookies CookieSettings, ttl time.Duration) *cookieTokenStore {
	return &cookieTokenStore{w: w, r: r, cookies: cookies, maxAge: int(ttl.Seconds()), token: requestToken(r)}
}

func (s *cookieTokenStore) Get(context.Context) (string, bool) {
	return s.token, s.token != ""
}

func (s *cookieTokenStore) Set(_ context.Context, token string) error {
	s.token = token
	s.cookies.set(s.w, s.r, cookieSpec{Name: TokenCookieName, Value: token, MaxAge: s.maxAge})
	return nil
}

func (s *cookieTokenStore) Clear(context.Context) error {
	s.token = ""
	s.cookies.clear(s.w, s.r, TokenCookieName, false)
	return nil
}

// flashNotifier hands notices to the SPA through a short-lived cookie holding
// base64url-encoded JSON. The last notice of a request wins.
type flashNotifier struct {
	w       http.ResponseWriter
	r       *http.Request
	cookies CookieSettings
}

var _ ports.Notifier = flashNotifier{}

func (n flashNotifier) Notify(_ context.Context, notice nav.Notice) {
	raw, err := json.Marshal(notice)
	if err != nil {
		return
	}
	n.cookies.set(n.w, n.r, cookieSpec{
		Name:   NoticeCookieName,
		Value:  base64.RawURLEncoding.EncodeToString(raw),
		MaxAge: noticeCookieMaxAge,
	})
}

// DecodeNotice parses a notice cookie value.
func DecodeNotice(value string) (nav.Notice, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nav.Notice{}, err
	}
	var n nav.Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return nav.Notice{}, err
	}
	return n, nil
}

// headerTitleSink reports the page title in a response header.
type headerTitleSink struct{ w http.ResponseWriter }

var _ ports.TitleSink = headerTitleSink{}

func (s headerTitleSink) SetTitle(_ context.Context, title string) {
	s.w.Header().Set(TitleHeader, title)
}
