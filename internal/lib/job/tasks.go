package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskCacheInvalidate bumps the list cache generation of a project.
	TaskCacheInvalidate = "cache:invalidate"

	QueueCritical = "critical"
	QueueDefault  = "default"

	// invalidateUniqueFor collapses retries for one project enqueued within
	// this window.
	invalidateUniqueFor = time.Minute
)

// CacheInvalidatePayload is the JSON payload of TaskCacheInvalidate.
type CacheInvalidatePayload struct {
	Project string `json:"project"`
}

// NewCacheInvalidateTask builds the task retrying an invalidation of
// project up to maxRetry times.
func NewCacheInvalidateTask(project string, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(CacheInvalidatePayload{Project: project})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskCacheInvalidate,
		payload,
		asynq.MaxRetry(maxRetry),
		asynq.Queue(QueueCritical),
		asynq.Timeout(10*time.Second),
		asynq.Unique(invalidateUniqueFor),
	), nil
}
