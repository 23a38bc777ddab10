package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/ports"
)

// Component names understood by the SPA.
const (
	ComponentLayout     = "Layout"
	ComponentParentView = "ParentView"
	ComponentInnerLink  = "InnerLink"

	// RedirectNone marks directory routes whose breadcrumb is not clickable.
	RedirectNone = "noRedirect"
)

// DefaultDynamicRoutes are the detail pages reachable only from inside other
// views. Each is granted by permission rather than by a menu row.
func DefaultDynamicRoutes() []nav.Route {
	detail := func(parent, perm, child, component, name, title, active string) nav.Route {
		return nav.Route{
			Path:        parent,
			Component:   ComponentLayout,
			Hidden:      true,
			Permissions: []string{perm},
			Children: []nav.Route{{
				Path:      child,
				Component: component,
				Name:      name,
				Meta:      nav.RouteMeta{Title: title, ActiveMenu: active},
			}},
		}
	}
	return []nav.Route{
		detail("/system/user-auth", "system:user:edit", `role/:userId(\d+)`, "system/user/authRole", "AuthRole", "Assign roles", "/system/user"),
		detail("/system/role-auth", "system:role:edit", `user/:roleId(\d+)`, "system/role/authUser", "AuthUser", "Assign users", "/system/role"),
		detail("/system/dict-data", "system:dict:list", `index/:dictId(\d+)`, "system/dict/data", "Data", "Dictionary data", "/system/dict"),
		detail("/monitor/job-log", "monitor:job:list", `index/:jobId(\d+)`, "monitor/job/log", "JobLog", "Job log", "/monitor/job"),
		detail("/tool/gen-edit", "tool:gen:edit", `index/:tableId(\d+)`, "tool/gen/editTable", "GenEdit", "Edit generator", "/tool/gen"),
	}
}

var errMenusMissing = errors.New("route service requires a menu repository")

// RouteServiceOptions groups dependencies for RouteService.
type RouteServiceOptions struct {
	Menus ports.MenuRepository
	// Dynamic routes are appended when the identity holds their permissions or roles.
	// Nil selects DefaultDynamicRoutes.
	Dynamic []nav.Route
	Logger  *slog.Logger
}

// RouteService generates the route table of an identity from its menus.
type RouteService struct {
	menus   ports.MenuRepository
	dynamic []nav.Route
	logger  *slog.Logger
}

var _ ports.RouteGenerator = (*RouteService)(nil)

// NewRouteService constructs a RouteService.
func NewRouteService(opts RouteServiceOptions) (*RouteService, error) {
	if opts.Menus == nil {
		return nil, errMenusMissing
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dynamic := opts.Dynamic
	if dynamic == nil {
		dynamic = DefaultDynamicRoutes()
	}
	return &RouteService{menus: opts.Menus, dynamic: dynamic, logger: logger.With("component", "route_service")}, nil
}

// GenerateRoutes returns the menu routes visible to identity followed by the
// dynamic routes it is permitted to open.
func (s *RouteService) GenerateRoutes(ctx context.Context, identity domainauth.Identity) ([]nav.Route, error) {
	var (
		menus []nav.Menu
		err   error
	)
	if identity.IsAdmin() {
		menus, err = s.menus.ListAll(ctx)
	} else {
		menus, err = s.menus.ListForUser(ctx, identity.User.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("load menus: %w", err)
	}

	routes := BuildRoutes(menus)
	routes = append(routes, FilterDynamicRoutes(identity, s.dynamic)...)
	s.logger.DebugContext(ctx, "generated routes", "menus", len(menus), "routes", len(routes))
	return routes, nil
}

// FilterDynamicRoutes keeps the routes identity may open. A route without
// permission or role requirements is dropped.
func FilterDynamicRoutes(identity domainauth.Identity, routes []nav.Route) []nav.Route {
	out := make([]nav.Route, 0, len(routes))
	for _, rt := range routes {
		switch {
		case len(rt.Permissions) > 0:
			if identity.HasAnyPermission(rt.Permissions...) {
				out = append(out, rt)
			}
		case len(rt.Roles) > 0:
			if identity.HasAnyRole(rt.Roles...) {
				out = append(out, rt)
			}
		}
	}
	return out
}

type menuNode struct {
	menu     nav.Menu
	children []*menuNode
}

// BuildRoutes turns menu rows into a route tree. Buttons are ignored and rows
// are ordered by parent then order number.
func BuildRoutes(menus []nav.Menu) []nav.Route {
	return buildRoutes(menuTree(menus))
}

func menuTree(menus []nav.Menu) []*menuNode {
	rows := make([]nav.Menu, 0, len(menus))
	for _, m := range menus {
		if m.Type == nav.MenuButton {
			continue
		}
		rows = append(rows, m)
	}
	slices.SortStableFunc(rows, func(a, b nav.Menu) int {
		if c := cmp.Compare(a.ParentID, b.ParentID); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderNum, b.OrderNum)
	})

	nodes := make(map[int64]*menuNode, len(rows))
	for _, m := range rows {
		nodes[m.ID] = &menuNode{menu: m}
	}
	var roots []*menuNode
	for _, m := range rows {
		n := nodes[m.ID]
		if parent, ok := nodes[m.ParentID]; ok && m.ParentID != 0 {
			parent.children = append(parent.children, n)
			continue
		}
		if m.IsTopLevel() {
			roots = append(roots, n)
		}
	}
	return roots
}

func buildRoutes(nodes []*menuNode) []nav.Route {
	routes := make([]nav.Route, 0, len(nodes))
	for _, n := range nodes {
		m := n.menu
		rt := nav.Route{
			Hidden:    !m.Visible,
			Name:      routeName(m),
			Path:      routerPath(m),
			Component: component(m),
			Query:     m.Query,
			Meta:      menuMeta(m),
		}

		switch {
		case len(n.children) > 0 && m.Type == nav.MenuDirectory:
			rt.AlwaysShow = true
			rt.Redirect = RedirectNone
			rt.Children = buildRoutes(n.children)
		case isMenuFrame(m):
			rt.Meta = nav.RouteMeta{}
			rt.Children = []nav.Route{{
				Path:      m.Path,
				Component: m.Component,
				Name:      capitalize(firstNonEmpty(m.RouteName, m.Path)),
				Meta:      menuMeta(m),
				Query:     m.Query,
			}}
		case m.IsTopLevel() && isInnerLink(m):
			rt.Meta = nav.RouteMeta{Title: m.Name, Icon: m.Icon}
			rt.Path = "/"
			p := innerLinkPath(m.Path)
			rt.Children = []nav.Route{{
				Path:      p,
				Component: ComponentInnerLink,
				Name:      capitalize(firstNonEmpty(m.RouteName, p)),
				Meta:      nav.RouteMeta{Title: m.Name, Icon: m.Icon, Link: m.Path},
			}}
		}
		routes = append(routes, rt)
	}
	return routes
}

func menuMeta(m nav.Menu) nav.RouteMeta {
	meta := nav.RouteMeta{Title: m.Name, Icon: m.Icon, NoCache: !m.Cache}
	if isHTTP(m.Path) {
		meta.Link = m.Path
	}
	return meta
}

func routeName(m nav.Menu) string {
	if isMenuFrame(m) {
		return ""
	}
	return capitalize(firstNonEmpty(m.RouteName, m.Path))
}

func routerPath(m nav.Menu) string {
	p := m.Path
	if !m.IsTopLevel() && isInnerLink(m) {
		p = innerLinkPath(p)
	}
	switch {
	case m.IsTopLevel() && m.Type == nav.MenuDirectory && !m.External:
		return "/" + m.Path
	case isMenuFrame(m):
		return "/"
	}
	return p
}

func component(m nav.Menu) string {
	switch {
	case m.Component != "" && !isMenuFrame(m):
		return m.Component
	case m.Component == "" && !m.IsTopLevel() && isInnerLink(m):
		return ComponentInnerLink
	case m.Component == "" && !m.IsTopLevel() && m.Type == nav.MenuDirectory:
		return ComponentParentView
	}
	return ComponentLayout
}

// isMenuFrame reports a top-level page rendered inside the layout.
func isMenuFrame(m nav.Menu) bool {
	return m.IsTopLevel() && m.Type == nav.MenuPage && !m.External
}

// isInnerLink reports an outside URL opened inside the app.
func isInnerLink(m nav.Menu) bool {
	return !m.External && isHTTP(m.Path)
}

func isHTTP(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

var innerLinkReplacer = strings.NewReplacer("http://", "", "https://", "", "www.", "", ".", "/", ":", "/")

func innerLinkPath(p string) string { return innerLinkReplacer.Replace(p) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
