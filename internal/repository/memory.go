package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/google/uuid"
)

// MemoryIssueStore keeps issues in process memory, in insertion order.
// It backs the "memory" driver and the handler tests.
type MemoryIssueStore struct {
	mu     sync.RWMutex
	issues []*model.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{}
}

func (m *MemoryIssueStore) Find(_ context.Context, filter model.Filter) ([]model.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Issue, 0)
	for _, issue := range m.issues {
		if filter.Matches(issue) {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (m *MemoryIssueStore) Insert(_ context.Context, issue *model.Issue) (*model.Issue, error) {
	stored := *issue
	stored.ID = uuid.NewString()

	m.mu.Lock()
	m.issues = append(m.issues, &stored)
	m.mu.Unlock()

	created := stored
	return &created, nil
}

func (m *MemoryIssueStore) UpdateByID(_ context.Context, id string, patch model.Patch) (*model.Issue, error) {
	uid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(uid.String())
	if i < 0 {
		return nil, fmt.Errorf("issue %s: %w", id, model.ErrIssueNotFound)
	}

	m.issues[i].Apply(patch)
	updated := *m.issues[i]
	return &updated, nil
}

func (m *MemoryIssueStore) DeleteByID(_ context.Context, id string) (*model.Issue, error) {
	uid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(uid.String())
	if i < 0 {
		return nil, fmt.Errorf("issue %s: %w", id, model.ErrIssueNotFound)
	}

	deleted := *m.issues[i]
	m.issues = slices.Delete(m.issues, i, i+1)
	return &deleted, nil
}

// indexOf expects the lock to be held.
func (m *MemoryIssueStore) indexOf(id string) int {
	return slices.IndexFunc(m.issues, func(issue *model.Issue) bool {
		return issue.ID == id
	})
}
