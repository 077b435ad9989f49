// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue: tasks are enqueued with asynq.Client and
// processed by the workers of an asynq.Server. The only task today retries
// issue list cache invalidations that failed inline.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client

	server   *asynq.Server
	logger   *zerolog.Logger
	maxRetry int
	bumper   GenerationBumper
	started  atomic.Bool
}

// NewJobService creates a JobService on the configured Redis. Invalidation
// retries go to the "critical" queue so they are not starved by anything
// added later to "default".
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			Logger: asynqLogger{logger: logger},
		},
	)

	return &JobService{
		Client:   client,
		server:   server,
		logger:   logger,
		maxRetry: cfg.Cache.InvalidationRetries,
	}
}

// InitHandlers sets the dependencies the task handlers need. It must run
// before Start.
func (j *JobService) InitHandlers(bumper GenerationBumper) {
	j.bumper = bumper
}

// Start registers the task handlers and starts the workers in the
// background.
func (j *JobService) Start() error {
	if j.bumper == nil {
		return errors.New("job handlers not initialized")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCacheInvalidate, j.handleCacheInvalidateTask)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	j.started.Store(true)

	return nil
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	if j.started.CompareAndSwap(true, false) {
		j.logger.Info().Msg("Stopping background job server")
		j.server.Shutdown()
	}
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}

// RetryInvalidation enqueues an invalidation of project. A retry already
// pending for the same project is enough, so duplicates are not an error.
func (j *JobService) RetryInvalidation(ctx context.Context, project string) error {
	task, err := NewCacheInvalidateTask(project, j.maxRetry)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue cache invalidation: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("task_id", info.ID).
		Str("project", project).
		Msg("cache invalidation retry scheduled")

	return nil
}

// asynqLogger routes asynq's own logs through zerolog.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Str("component", "asynq").Msg(fmt.Sprint(args...)) }
