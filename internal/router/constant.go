package router

import "github.com/target/navguard/internal/domain/nav"

// ConstantRoutes is the base route table every client can resolve, signed in or not.
func ConstantRoutes() []nav.Route {
	return []nav.Route{
		{Path: "/redirect", Component: "Layout", Hidden: true, Children: []nav.Route{
			{Path: "/redirect/:path(.*)", Component: "redirect"},
		}},
		{Path: "/login", Component: "login", Hidden: true, Meta: nav.RouteMeta{Title: "Sign in"}},
		{Path: "/register", Component: "register", Hidden: true, Meta: nav.RouteMeta{Title: "Register"}},
		{Path: "/404", Component: "error/404", Hidden: true, Meta: nav.RouteMeta{Title: "Not found"}},
		{Path: "/401", Component: "error/401", Hidden: true, Meta: nav.RouteMeta{Title: "Unauthorized"}},
		{Path: "", Component: "Layout", Redirect: "/index", Children: []nav.Route{
			{Path: "/index", Component: "index", Name: "Index", Meta: nav.RouteMeta{Title: "Home", Icon: "dashboard"}},
		}},
		{Path: "/user", Component: "Layout", Hidden: true, Redirect: "noRedirect", Children: []nav.Route{
			{Path: "profile", Component: "system/user/profile/index", Name: "Profile", Meta: nav.RouteMeta{Title: "Profile", Icon: "user"}},
		}},
	}
}
