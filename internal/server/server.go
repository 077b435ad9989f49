// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool (nil with the memory driver)
//   - redis client (nil when no address is configured)
//   - background job service retrying cache invalidations
//   - Prometheus registry and collectors
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/deppfellow/issue-tracker/internal/database"
	"github.com/deppfellow/issue-tracker/internal/lib/job"
	"github.com/deppfellow/issue-tracker/internal/metrics"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/issue-tracker/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; that one is built by SetupHTTPServer.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is nil when the memory driver is selected.
	DB *database.Database

	// Redis is nil when no address is configured.
	Redis *redis.Client

	// Job is nil unless the list cache is on and invalidation retries are
	// configured.
	Job *job.JobService

	// Metrics is nil when metrics are disabled. Registry is always set.
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	httpServer *http.Server
}

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 5 * time.Second

// New constructs a Server and initializes core dependencies.
//
// A Postgres failure blocks startup. A Redis failure does not: the client
// is kept (it reconnects lazily) and the list cache treats errors as misses.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Registry:      metrics.NewRegistry(),
	}

	if cfg.Observability.Metrics.Enabled {
		server.Metrics = metrics.New(server.Registry)
	}

	if cfg.Database.Driver == config.DriverPostgres {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db
	} else {
		logger.Warn().Str("driver", cfg.Database.Driver).Msg("using in-memory issue store, data is lost on restart")
	}

	if cfg.Redis.Enabled() {
		server.Redis = newRedisClient(cfg.Redis, logger, loggerService)

		if cfg.Cache.Enabled && cfg.Cache.InvalidationRetries > 0 {
			server.Job = job.NewJobService(logger, cfg)
		}
	}

	return server, nil
}

func newRedisClient(cfg config.RedisConfig, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("address", cfg.Address).Msg("Failed to connect to Redis, continuing without cache hits")
	} else {
		logger.Info().Str("address", cfg.Address).Msg("connected to Redis")
	}

	return redisClient
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the job workers and the HTTP server. It blocks until the HTTP
// server stops and returns nil after a graceful Shutdown. Workers that fail
// to start only cost the invalidation retries.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	if s.Job != nil {
		if err := s.Job.Start(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to start job server, cache invalidations will not be retried")
		}
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("driver", s.Config.Database.Driver).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then stops the job
// workers and closes the database pool and the Redis client. Every step runs even if an earlier one
// fails; the errors are joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	return errors.Join(errs...)
}
