package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// GenerationBumper invalidates every cached list of a project.
type GenerationBumper interface {
	BumpGeneration(ctx context.Context, project string) error
}

func (j *JobService) handleCacheInvalidateTask(ctx context.Context, t *asynq.Task) error {
	var p CacheInvalidatePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal cache invalidate payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := j.bumper.BumpGeneration(ctx, p.Project); err != nil {
		j.logger.Warn().
			Str("type", TaskCacheInvalidate).
			Str("project", p.Project).
			Err(err).
			Msg("Failed to invalidate issue cache, will retry")
		return err
	}

	j.logger.Info().
		Str("type", TaskCacheInvalidate).
		Str("project", p.Project).
		Msg("Invalidated issue cache")

	return nil
}
