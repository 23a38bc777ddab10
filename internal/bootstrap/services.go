package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/navguard/config"
	redisadapter "github.com/target/navguard/internal/adapters/redis"
	"github.com/target/navguard/internal/data"
	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/observability/statsd"
	"github.com/target/navguard/internal/router"
	"github.com/target/navguard/internal/service"
	"github.com/target/navguard/internal/session"
)

// ServiceDeps holds the infrastructure the services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ObservabilityContainer groups metrics emitters.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled.
	MetricsSink statsd.Sink
	client      *statsd.Client
}

// Close releases the statsd connection.
func (o ObservabilityContainer) Close() error {
	return o.client.Close()
}

// ServiceContainer holds every wired component of the navigation guard.
type ServiceContainer struct {
	Tokens     *service.TokenIssuer
	Identities *service.IdentityService
	Routes     *service.RouteService
	Guard      *service.Guard
	Auth       *service.AuthService // nil when the login flow is disabled
	Sessions   *session.Manager
	Router     *router.Router

	Observability ObservabilityContainer
}

var errMissingDeps = errors.New("service deps require config, database and redis")

// NewServices wires repositories, session storage and the navigation guard.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil || deps.RedisClient == nil {
		return nil, errMissingDeps
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observability := buildObservability(logger, cfg.Observability)

	tokens, err := service.NewTokenIssuer(service.TokenIssuerOptions{
		Secret: cfg.Auth.TokenSecret,
		TTL:    cfg.Auth.SessionTTL,
		Issuer: "navguard",
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	sessionStore := redisadapter.NewSessionStore(deps.RedisClient, redisadapter.SessionStoreOptions{
		Prefix:      cfg.Redis.KeyPrefix,
		FallbackTTL: cfg.Auth.SessionTTL,
	})
	users := data.NewUserRepo(deps.DB)
	menus := data.NewMenuRepo(deps.DB)

	identities := service.NewIdentityService(service.IdentityServiceOptions{
		Tokens:   tokens,
		Sessions: sessionStore,
		Users:    users,
		Logger:   logger,
	})
	routes, err := service.NewRouteService(service.RouteServiceOptions{
		Menus:  menus,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("route service: %w", err)
	}

	sessions := session.NewManager(session.ManagerOptions{
		IdleTTL: cfg.Guard.SessionIdleTTL,
		Logger:  logger,
	})

	guard, err := service.NewGuard(service.GuardOptions{
		Sessions:         sessions,
		Identities:       identities,
		Routes:           routes,
		AllowList:        nav.NewAllowList(cfg.Guard.AllowList...),
		LoginPath:        cfg.Guard.LoginPath,
		RootPath:         cfg.Guard.RootPath,
		LandingPath:      cfg.Guard.LandingPath,
		TokenParam:       cfg.Guard.TokenParam,
		BootstrapTimeout: cfg.Guard.BootstrapTimeout,
		Metrics:          observability.MetricsSink,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("navigation guard: %w", err)
	}

	rt := router.New(router.Options{
		Base:         nav.NewRegistry(router.ConstantRoutes()...),
		Sessions:     sessions,
		MaxRedirects: cfg.Guard.MaxRedirects,
		Logger:       logger,
	})
	rt.BeforeEach(guard.BeforeEach)
	rt.AfterEach(guard.AfterEach)

	auth := BuildAuthService(AuthConfig{
		Auth:     cfg.Auth,
		Sessions: sessionStore,
		Users:    users,
		Tokens:   tokens,
		Logger:   logger,
	})

	return &ServiceContainer{
		Tokens:        tokens,
		Identities:    identities,
		Routes:        routes,
		Guard:         guard,
		Auth:          auth,
		Sessions:      sessions,
		Router:        rt,
		Observability: observability,
	}, nil
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger.With("component", "observability")
	if !cfg.Metrics.IsEnabled() {
		return ObservabilityContainer{}
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		return ObservabilityContainer{}
	}
	obsLogger.Info("statsd metrics enabled", "address", cfg.Metrics.StatsdAddress, "prefix", cfg.Metrics.Prefix)
	return ObservabilityContainer{MetricsSink: client, client: client}
}
