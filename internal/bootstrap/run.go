package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/navguard/config"
)

// shutdownWaitTimeout is the maximum time to wait for components to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// RunConfig holds what RunWithShutdown starts.
type RunConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Shell    []byte
	Static   fs.FS
	Logger   *slog.Logger
}

// RunWithShutdown starts the HTTP server and the session sweeper, then blocks
// until ctx is done, a shutdown signal arrives or the server fails.
func RunWithShutdown(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("run config requires AppConfig and services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Shell:    cfg.Shell,
		Static:   cfg.Static,
		Logger:   logger,
	}, errCh)

	sweeper := startSweeper(runCtx, cfg.Services, cfg.Config.Guard, logger)

	return waitForShutdown(shutdownConfig{
		ctx:           runCtx,
		cancel:        cancel,
		errCh:         errCh,
		httpServer:    server,
		sweeperDone:   sweeper,
		observability: cfg.Services.Observability,
		logger:        logger,
	})
}

func startSweeper(ctx context.Context, svc *ServiceContainer, cfg config.GuardConfig, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if cfg.SessionIdleTTL <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		svc.Sessions.Run(ctx, cfg.SweepInterval)
	}()
	logger.InfoContext(ctx, "session sweeper started",
		"idle_ttl", cfg.SessionIdleTTL.String(),
		"interval", cfg.SweepInterval.String(),
	)
	return done
}

type shutdownConfig struct {
	ctx           context.Context
	cancel        context.CancelFunc
	errCh         <-chan error
	httpServer    *http.Server
	sweeperDone   <-chan struct{}
	observability ObservabilityContainer
	logger        *slog.Logger
}

func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		cfg.logger.Info("shutting down navguard...")
	case <-cfg.ctx.Done():
		cfg.logger.Info("context done, shutting down navguard...")
	case runErr = <-cfg.errCh:
		cfg.logger.Error("service error", "error", runErr)
	}

	cfg.cancel()
	if stopErr := gracefulStop(cfg); stopErr != nil {
		if runErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
			return runErr
		}
		return stopErr
	}
	return runErr
}

func gracefulStop(cfg shutdownConfig) error {
	// the run context is already cancelled; shutdown gets its own deadline
	stopCtx := context.WithoutCancel(cfg.ctx)

	err := ShutdownHTTPServer(stopCtx, cfg.httpServer, cfg.logger)

	select {
	case <-cfg.sweeperDone:
	case <-time.After(shutdownWaitTimeout):
		cfg.logger.Warn("timeout waiting for session sweeper to stop")
	}

	if cerr := cfg.observability.Close(); cerr != nil {
		cfg.logger.Warn("close statsd client", "error", cerr)
	}
	return err
}
