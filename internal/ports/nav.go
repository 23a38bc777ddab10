package ports

import (
	"context"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
)

// TokenStore is the client-side persisted session token.
type TokenStore interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// IdentityStore fetches the user identity behind a session token and ends sessions.
type IdentityStore interface {
	FetchIdentity(ctx context.Context, token string) (domainauth.Identity, error)
	Logout(ctx context.Context, token string) error
}

// RouteGenerator derives the permitted route table from an identity.
// Routes are returned in menu order.
type RouteGenerator interface {
	GenerateRoutes(ctx context.Context, identity domainauth.Identity) ([]nav.Route, error)
}

// MenuRepository loads the menu rows routes are generated from.
type MenuRepository interface {
	ListAll(ctx context.Context) ([]nav.Menu, error)
	ListForUser(ctx context.Context, userID int64) ([]nav.Menu, error)
}

// Progress signals the start and end of a navigation.
type Progress interface {
	Start(ctx context.Context, to nav.RouteRequest)
	Done(ctx context.Context)
}

// TitleSink receives the display title of the route being navigated to.
type TitleSink interface {
	SetTitle(ctx context.Context, title string)
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, notice nav.Notice)
}
