// Package repository handles all interactions with issue storage.
//
// IssueStore is implemented by a PostgreSQL store and an in-memory store,
// and decorated with instrumentation and a Redis list cache. Every
// implementation returns issues in creation order, and wraps
// model.ErrIssueNotFound / model.ErrMalformedID when an id does not resolve.
package repository

import (
	"context"

	"github.com/deppfellow/issue-tracker/internal/model"
)

// IssueStore persists issues.
type IssueStore interface {
	// Find returns the issues matching filter in creation order.
	Find(ctx context.Context, filter model.Filter) ([]model.Issue, error)

	// Insert stores issue and returns it with its generated id.
	Insert(ctx context.Context, issue *model.Issue) (*model.Issue, error)

	// UpdateByID applies patch to the issue with id and returns the result.
	UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Issue, error)

	// DeleteByID removes the issue with id and returns what was removed.
	DeleteByID(ctx context.Context, id string) (*model.Issue, error)
}
