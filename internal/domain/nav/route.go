// Package nav contains the navigation domain: route requests, route definitions,
// guard decisions, the authentication allow-list and route registries.
package nav

import (
	"net/url"
	"strings"
)

// RouteMeta is the display metadata attached to a route.
type RouteMeta struct {
	Title   string `json:"title,omitempty"`
	Icon    string `json:"icon,omitempty"`
	NoCache bool   `json:"noCache,omitempty"`
	Link    string `json:"link,omitempty"`

	// ActiveMenu is the menu path highlighted while a hidden route is open.
	ActiveMenu string `json:"activeMenu,omitempty"`
}

// RouteRequest is a single navigation target.
type RouteRequest struct {
	Path    string
	Query   url.Values
	Meta    RouteMeta
	Replace bool
}

// URL renders the request as a same-origin relative URL.
func (r RouteRequest) URL() string {
	p := r.Path
	if p == "" {
		p = "/"
	}
	if len(r.Query) == 0 {
		return p
	}
	return p + "?" + r.Query.Encode()
}

// SameLocation reports whether r and other point at the same path and query.
func (r RouteRequest) SameLocation(other RouteRequest) bool {
	return r.URL() == other.URL()
}

// Route is a route definition as produced by route generation.
type Route struct {
	Name        string    `json:"name,omitempty"`
	Path        string    `json:"path"`
	Hidden      bool      `json:"hidden"`
	Redirect    string    `json:"redirect,omitempty"`
	Component   string    `json:"component,omitempty"`
	Query       string    `json:"query,omitempty"`
	AlwaysShow  bool      `json:"alwaysShow,omitempty"`
	Meta        RouteMeta `json:"meta"`
	Permissions []string  `json:"permissions,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Children    []Route   `json:"children,omitempty"`
}

// IsExternal reports whether path is an absolute http(s) URL. External routes
// are rendered as links and never registered with a router.
func IsExternal(path string) bool {
	return strings.Contains(path, "http://") || strings.Contains(path, "https://")
}

// JoinPath resolves a child route path against its parent's full path.
func JoinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}
