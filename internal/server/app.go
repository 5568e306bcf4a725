// Package server assembles the sessiongate server: it opens the configured
// credential store, runs migrations, wires the session service and serves
// the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sessiongate/internal/logging"
	"github.com/dmitrijs2005/sessiongate/internal/server/auth"
	"github.com/dmitrijs2005/sessiongate/internal/server/config"
	"github.com/dmitrijs2005/sessiongate/internal/server/metrics"
	"github.com/dmitrijs2005/sessiongate/internal/server/passwords"
	"github.com/dmitrijs2005/sessiongate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessiongate/internal/server/rest"
	"github.com/dmitrijs2005/sessiongate/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	server      *rest.HTTPServer
}

// OpenStorage connects to the backend named by cfg.Storage.
func OpenStorage(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.StorageRedis:
		return repomanager.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.StorageMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage %q", config.ErrConfig, cfg.Storage)
	}
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	rm, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := passwords.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	reg := metrics.NewRegistry()
	tokens := auth.NewTokenManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	sessions := services.NewSessionService(rm, tokens, hasher, cfg, logger, reg)

	if cfg.AdminSecret == "" {
		logger.Warn(ctx, "admin secret is empty, sign-up is disabled")
	}

	return &App{
		config:      cfg,
		logger:      logger,
		repomanager: rm,
		server:      rest.NewHTTPServer(cfg.EndpointAddrHTTP, logger, sessions, reg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops the HTTP server and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if cerr := app.repomanager.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close failed", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
