package repository

import (
	"github.com/deppfellow/issue-tracker/internal/cache"
	"github.com/deppfellow/issue-tracker/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Issues IssueStore
}

// NewRepositories picks the issue store for the configured driver and wraps
// it:
//
//	CachingIssueStore (Redis configured and cache enabled, failed
//	invalidations retried by the job service when there is one)
//	  -> InstrumentedIssueStore
//	    -> PostgresIssueStore | MemoryIssueStore
func NewRepositories(s *server.Server) *Repositories {
	var store IssueStore
	if s.DB != nil {
		store = NewPostgresIssueStore(s.DB.Pool)
	} else {
		store = NewMemoryIssueStore()
	}

	store = NewInstrumentedIssueStore(store, s.Metrics, s.Config.Observability.Logging.SlowQueryThreshold)

	if s.Redis != nil && s.Config.Cache.Enabled {
		redisCache := cache.NewRedisIssueCache(s.Redis, s.Config.Cache.TTL, s.Metrics)
		if s.Job != nil {
			redisCache.RetryWith(s.Job)
			s.Job.InitHandlers(redisCache)
		}
		store = NewCachingIssueStore(store, redisCache)
	}

	return &Repositories{
		Issues: store,
	}
}
