// Command issues runs the issue tracker HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/deppfellow/issue-tracker/internal/database"
	"github.com/deppfellow/issue-tracker/internal/handler"
	"github.com/deppfellow/issue-tracker/internal/logger"
	"github.com/deppfellow/issue-tracker/internal/repository"
	"github.com/deppfellow/issue-tracker/internal/router"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	migrateTimeout  = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if err := run(cfg, &appLogger, loggerService); err != nil {
		appLogger.Error().Err(err).Msg("server stopped with error")
		loggerService.Shutdown()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *zerolog.Logger, loggerService *logger.LoggerService) error {
	if cfg.Database.Driver == config.DriverPostgres && cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		err := database.Migrate(ctx, appLogger, cfg)
		cancel()
		if err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, appLogger, loggerService)
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return err
	}

	handlers := handler.NewHandlers(srv, services)

	r, err := router.NewRouter(srv, handlers)
	if err != nil {
		return err
	}

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
		return nil
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	appLogger.Info().Msg("server exited properly")
	return nil
}
