package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList_Match(t *testing.T) {
	al := NewAllowList("/login", "/register", "/index", "/", "/public/*", "/docs/**", "  ")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "exact login", path: "/login", want: true},
		{name: "exact root", path: "/", want: true},
		{name: "exact index", path: "/index", want: true},
		{name: "prefix is not exact", path: "/login/extra", want: false},
		{name: "protected", path: "/dashboard", want: false},
		{name: "single segment wildcard", path: "/public/terms", want: true},
		{name: "single segment wildcard does not cross slash", path: "/public/a/b", want: false},
		{name: "double wildcard crosses segments", path: "/docs/guide/intro", want: true},
		{name: "double wildcard matches empty suffix", path: "/docs/", want: true},
		{name: "empty path", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, al.Match(tt.path))
		})
	}
}

func TestAllowList_RegexMetaIsLiteral(t *testing.T) {
	al := NewAllowList("/a.b", "/c+d")
	assert.True(t, al.Match("/a.b"))
	assert.False(t, al.Match("/axb"))
	assert.True(t, al.Match("/c+d"))
	assert.False(t, al.Match("/ccd"))
}

func TestAllowList_NilAndPatterns(t *testing.T) {
	var al *AllowList
	assert.False(t, al.Match("/"))
	assert.Nil(t, al.Patterns())

	al = NewAllowList(DefaultAllowList...)
	assert.Equal(t, DefaultAllowList, al.Patterns())
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("https://example.com/docs"))
	assert.True(t, IsExternal("http://example.com"))
	assert.False(t, IsExternal("/system/user"))
	assert.False(t, IsExternal("user"))
}
