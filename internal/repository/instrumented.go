package repository

import (
	"context"
	"time"

	"github.com/deppfellow/issue-tracker/internal/metrics"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/deppfellow/issue-tracker/internal/sqlerr"
	"github.com/rs/zerolog"
)

// InstrumentedIssueStore wraps an IssueStore with metrics, error
// classification and slow-operation logging.
type InstrumentedIssueStore struct {
	next          IssueStore
	metrics       *metrics.Metrics
	slowThreshold time.Duration
}

// NewInstrumentedIssueStore wraps next. A zero slowThreshold disables slow
// operation warnings; a nil m disables metrics.
func NewInstrumentedIssueStore(next IssueStore, m *metrics.Metrics, slowThreshold time.Duration) *InstrumentedIssueStore {
	return &InstrumentedIssueStore{
		next:          next,
		metrics:       m,
		slowThreshold: slowThreshold,
	}
}

func (s *InstrumentedIssueStore) Find(ctx context.Context, filter model.Filter) ([]model.Issue, error) {
	start := time.Now()
	issues, err := s.next.Find(ctx, filter)
	s.observe(ctx, "find", start, err, func(e *zerolog.Event) {
		e.Str("project", filter.Project).Int("conditions", len(filter.Conditions)).Int("results", len(issues))
	})
	return issues, err
}

func (s *InstrumentedIssueStore) Insert(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	start := time.Now()
	created, err := s.next.Insert(ctx, issue)
	s.observe(ctx, "insert", start, err, func(e *zerolog.Event) {
		e.Str("project", issue.Project)
	})
	return created, err
}

func (s *InstrumentedIssueStore) UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Issue, error) {
	start := time.Now()
	updated, err := s.next.UpdateByID(ctx, id, patch)
	s.observe(ctx, "update", start, err, func(e *zerolog.Event) {
		e.Str("issue_id", id).Int("fields", len(patch.Changes))
	})
	return updated, err
}

func (s *InstrumentedIssueStore) DeleteByID(ctx context.Context, id string) (*model.Issue, error) {
	start := time.Now()
	deleted, err := s.next.DeleteByID(ctx, id)
	s.observe(ctx, "delete", start, err, func(e *zerolog.Event) {
		e.Str("issue_id", id)
	})
	return deleted, err
}

func (s *InstrumentedIssueStore) observe(ctx context.Context, op string, start time.Time, err error, fields func(*zerolog.Event)) {
	took := time.Since(start)
	kind := sqlerr.Classify(err)

	s.metrics.ObserveStorage(op, took, string(kind))

	logger := zerolog.Ctx(ctx)

	if err != nil {
		e := logger.Error().Stack()
		if kind.RequestCaused() {
			e = logger.Info()
		}
		fields(e)
		e.Err(err).
			Str("operation", op).
			Str("error_kind", string(kind)).
			Str("detail", sqlerr.Describe(err)).
			Dur("took", took).
			Msg("issue store operation failed")
		return
	}

	if s.slowThreshold > 0 && took > s.slowThreshold {
		e := logger.Warn()
		fields(e)
		e.Str("operation", op).
			Dur("took", took).
			Dur("threshold", s.slowThreshold).
			Msg("slow issue store operation")
	}
}
