package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/navguard/internal/domain/nav"
)

func TestDeriveCookieDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"app.example.com", "example.com"},
		{"app.example.com:8443", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"example.com", "example.com"},
		{"localhost:8080", ""},
		{"127.0.0.1:8080", ""},
		{"[::1]:8080", ""},
		{"co.uk", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCookieDomain(tt.host))
		})
	}
}

func TestCookieSettings_Domain(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://app.example.com/index", nil)

	assert.Equal(t, "example.com", CookieSettings{Domain: CookieDomainAuto}.domainFor(req))
	assert.Equal(t, "corp.example", CookieSettings{Domain: "corp.example"}.domainFor(req))
	assert.Empty(t, CookieSettings{}.domainFor(req))
}

func TestRequestToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, requestToken(req))

	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", requestToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", requestToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "from-cookie", requestToken(req))
}

func TestCookieTokenStore(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	store := newCookieTokenStore(rec, req, CookieSettings{}, time.Hour)

	_, ok := store.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "tok"))
	token, ok := store.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Negative(t, cookies[1].MaxAge)
}

func TestFlashNotifier(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	flashNotifier{w: rec, r: req}.Notify(context.Background(), nav.Notice{Level: nav.NoticeWarning, Message: "Please log in first"})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, NoticeCookieName, cookies[0].Name)

	notice, err := DecodeNotice(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, nav.Notice{Level: nav.NoticeWarning, Message: "Please log in first"}, notice)

	_, err = DecodeNotice("not base64!")
	require.Error(t, err)
}
