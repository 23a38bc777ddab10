package bootstrap

import (
	"log/slog"

	"github.com/target/navguard/config"
	"github.com/target/navguard/internal/adapters/authroles"
	"github.com/target/navguard/internal/adapters/devauth"
	"github.com/target/navguard/internal/adapters/oidc"
	"github.com/target/navguard/internal/ports"
	"github.com/target/navguard/internal/service"
)

// AuthConfig contains the dependencies of the login flow.
type AuthConfig struct {
	Auth     config.AuthConfig
	Sessions ports.SessionStore
	Users    ports.UserRepository
	Tokens   *service.TokenIssuer
	Logger   *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil when a dependency is missing or the provider cannot be built;
// the /auth endpoints are then not registered.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Sessions == nil || cfg.Tokens == nil {
		logger.Warn("auth service disabled: session store or token issuer not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	var (
		provider ports.AuthProvider
		err      error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		provider, err = buildDevAuthProvider(cfg.Auth, logger)
	case config.AuthModeOAuth:
		provider, err = buildOIDCProvider(cfg.Auth, logger)
	default:
		logger.Warn("auth service disabled: unknown auth mode", "mode", cfg.Auth.Mode)
		return nil
	}
	if err != nil {
		logger.Warn("failed to create auth provider, auth disabled", "mode", cfg.Auth.Mode, "error", err)
		return nil
	}
	if provider == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: cfg.Sessions,
		Roles:    authroles.NewStaticRoleMapper(cfg.Auth.AdminGroup, cfg.Auth.UserGroup),
		Users:    cfg.Users,
		Tokens:   cfg.Tokens,
	})
}

//nolint:ireturn // the provider is chosen by auth mode
func buildDevAuthProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	logger.Warn("dev auth enabled; every login is signed in as the configured identity",
		"user_id", cfg.DevAuth.UserID,
	)
	return devauth.NewProvider(devauth.Config{
		UserID:          cfg.DevAuth.UserID,
		FirstName:       cfg.DevAuth.FirstName,
		LastName:        cfg.DevAuth.LastName,
		Email:           cfg.DevAuth.Email,
		Groups:          cfg.DevAuth.Groups,
		SessionDuration: cfg.SessionTTL,
	})
}

//nolint:ireturn // the provider is chosen by auth mode
func buildOIDCProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	oauth := cfg.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil, nil
	}

	return oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
}
