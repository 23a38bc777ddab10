package ports_test

import (
	"testing"

	"github.com/target/navguard/internal/adapters/authroles"
	"github.com/target/navguard/internal/adapters/devauth"
	"github.com/target/navguard/internal/adapters/oidc"
	"github.com/target/navguard/internal/adapters/redis"
	"github.com/target/navguard/internal/data"
	mocks "github.com/target/navguard/internal/mocks/auth"
	"github.com/target/navguard/internal/mocks/client"
	"github.com/target/navguard/internal/ports"
	"github.com/target/navguard/internal/service"
)

// Compile-time checks that implementations conform to the ports.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (*mocks.StaticRoleMapper)(nil)
	var _ ports.UserRepository = (*mocks.MemoryUserRepository)(nil)
	var _ ports.MenuRepository = (*mocks.MemoryMenuRepository)(nil)

	var _ ports.AuthProvider = (*devauth.Provider)(nil)
	var _ ports.AuthProvider = (*oidc.Provider)(nil)
	var _ ports.RoleMapper = authroles.StaticRoleMapper{}
	var _ ports.SessionStore = (*redis.SessionStore)(nil)
	var _ ports.UserRepository = (*data.UserRepo)(nil)
	var _ ports.MenuRepository = (*data.MenuRepo)(nil)

	var _ ports.IdentityStore = (*service.IdentityService)(nil)
	var _ ports.RouteGenerator = (*service.RouteService)(nil)

	var _ ports.TokenStore = (*client.MemoryTokenStore)(nil)
	var _ ports.Progress = (*client.RecordingProgress)(nil)
	var _ ports.TitleSink = (*client.RecordingTitles)(nil)
	var _ ports.Notifier = (*client.RecordingNotifier)(nil)
}
