package repository

import (
	"context"

	"github.com/deppfellow/issue-tracker/internal/cache"
	"github.com/deppfellow/issue-tracker/internal/model"
)

// CachingIssueStore serves Find from an IssueCache and invalidates the
// project's cached lists after every successful write, before the write
// returns, so a client always reads its own writes.
type CachingIssueStore struct {
	next  IssueStore
	cache cache.IssueCache
}

func NewCachingIssueStore(next IssueStore, c cache.IssueCache) *CachingIssueStore {
	return &CachingIssueStore{
		next:  next,
		cache: c,
	}
}

func (s *CachingIssueStore) Find(ctx context.Context, filter model.Filter) ([]model.Issue, error) {
	cached, key, hit := s.cache.Lookup(ctx, filter)
	if hit {
		return cached, nil
	}

	issues, err := s.next.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.cache.Store(ctx, key, issues)
	return issues, nil
}

func (s *CachingIssueStore) Insert(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	created, err := s.next.Insert(ctx, issue)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, created.Project)
	return created, nil
}

func (s *CachingIssueStore) UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Issue, error) {
	updated, err := s.next.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, updated.Project)
	return updated, nil
}

func (s *CachingIssueStore) DeleteByID(ctx context.Context, id string) (*model.Issue, error) {
	deleted, err := s.next.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, deleted.Project)
	return deleted, nil
}
