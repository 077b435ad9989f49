package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBumper struct {
	projects []string
	err      error
}

func (f *fakeBumper) BumpGeneration(_ context.Context, project string) error {
	f.projects = append(f.projects, project)
	return f.err
}

func newTestJobService(t *testing.T) *JobService {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Redis.Address = "127.0.0.1:1"
	logger := zerolog.Nop()

	j := NewJobService(&logger, cfg)
	t.Cleanup(j.Stop)
	return j
}

func TestNewCacheInvalidateTask(t *testing.T) {
	task, err := NewCacheInvalidateTask("apitest", 3)
	require.NoError(t, err)

	assert.Equal(t, TaskCacheInvalidate, task.Type())

	var p CacheInvalidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "apitest", p.Project)
}

func TestHandleCacheInvalidateTask(t *testing.T) {
	j := newTestJobService(t)
	bumper := &fakeBumper{}
	j.InitHandlers(bumper)

	task, err := NewCacheInvalidateTask("apitest", 3)
	require.NoError(t, err)

	require.NoError(t, j.handleCacheInvalidateTask(context.Background(), task))
	assert.Equal(t, []string{"apitest"}, bumper.projects)
}

func TestHandleCacheInvalidateTask_BumpFailureRetries(t *testing.T) {
	j := newTestJobService(t)
	j.InitHandlers(&fakeBumper{err: errors.New("connection refused")})

	task, err := NewCacheInvalidateTask("apitest", 3)
	require.NoError(t, err)

	err = j.handleCacheInvalidateTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleCacheInvalidateTask_BadPayloadSkipsRetry(t *testing.T) {
	j := newTestJobService(t)
	bumper := &fakeBumper{}
	j.InitHandlers(bumper)

	task := asynq.NewTask(TaskCacheInvalidate, []byte("not json"))

	err := j.handleCacheInvalidateTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, bumper.projects)
}

func TestStart_RequiresHandlers(t *testing.T) {
	j := newTestJobService(t)
	assert.Error(t, j.Start())
}

func TestRetryInvalidation_RedisDown(t *testing.T) {
	j := newTestJobService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, j.RetryInvalidation(ctx, "apitest"))
}
