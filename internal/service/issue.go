package service

import (
	"context"
	"net/url"
	"time"

	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/deppfellow/issue-tracker/internal/repository"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/rs/zerolog"
)

// IssueService implements the four issue operations on top of an IssueStore.
//
// Failures come back as *errs.ResultError carrying the client-facing message
// and, as cause, the error that produced it.
type IssueService struct {
	server *server.Server
	issues repository.IssueStore
	now    func() time.Time
}

func NewIssueService(s *server.Server, issues repository.IssueStore) *IssueService {
	return &IssueService{
		server: s,
		issues: issues,
		now:    defaultNow,
	}
}

// WithClock replaces the time source of created_on and updated_on.
func (s *IssueService) WithClock(now func() time.Time) *IssueService {
	s.now = now
	return s
}

// defaultNow is truncated to the precision Postgres stores.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ListIssues returns the issues of project matching the query filters, in
// creation order. It never returns a nil slice.
func (s *IssueService) ListIssues(ctx context.Context, project string, query url.Values) ([]model.Issue, error) {
	filter, err := model.ParseFilter(project, query)
	if err != nil {
		return nil, errs.NewResultError(model.MsgFetchFailed, "").WithCause(err)
	}

	issues, err := s.issues.Find(ctx, filter)
	if err != nil {
		return nil, errs.NewResultError(model.MsgFetchFailed, "").WithCause(err)
	}

	if issues == nil {
		issues = []model.Issue{}
	}
	return issues, nil
}

// CreateIssue stores a new open issue in project. req must be validated.
func (s *IssueService) CreateIssue(ctx context.Context, project string, req *model.CreateIssueRequest) (*model.Issue, error) {
	issue, err := model.NewIssue(project, req, s.now())
	if err != nil {
		return nil, errs.NewResultError(model.MsgCreateFailed, "").WithCause(err)
	}

	created, err := s.issues.Insert(ctx, issue)
	if err != nil {
		return nil, errs.NewResultError(model.MsgCreateFailed, "").WithCause(err)
	}
	return created, nil
}

// UpdateIssue applies the non-empty fields of req to the issue req.ID and
// refreshes its updated_on. The issue is addressed by id alone. Non-empty
// body keys that are not updatable only refresh updated_on.
func (s *IssueService) UpdateIssue(ctx context.Context, req *model.UpdateIssueRequest) (*model.MutationResult, error) {
	if req.ID.Empty() {
		return nil, errs.NewResultError(model.MsgMissingID, "")
	}

	sentID := req.ID.Text
	if !req.HasUpdates() {
		return nil, errs.NewResultError(model.MsgNoUpdateFields, sentID)
	}

	id, err := req.ID.IssueID()
	if err != nil {
		return nil, errs.NewResultError(model.MsgUpdateFailed, sentID).WithCause(err)
	}

	patch, err := model.BuildPatch(req.Changes(), s.now())
	if err != nil {
		return nil, errs.NewResultError(model.MsgUpdateFailed, sentID).WithCause(err)
	}

	if len(req.Ignored) > 0 {
		zerolog.Ctx(ctx).Debug().
			Str("issue_id", id).
			Strs("ignored_fields", req.Ignored).
			Msg("update carries fields that are not updatable")
	}

	if _, err := s.issues.UpdateByID(ctx, id, patch); err != nil {
		return nil, errs.NewResultError(model.MsgUpdateFailed, sentID).WithCause(err)
	}

	return &model.MutationResult{
		Result: model.ResultSuccessfullyUpdated,
		ID:     sentID,
	}, nil
}

// DeleteIssue permanently removes the issue req.ID.
func (s *IssueService) DeleteIssue(ctx context.Context, req *model.DeleteIssueRequest) (*model.MutationResult, error) {
	if req.ID.Empty() {
		return nil, errs.NewResultError(model.MsgMissingID, "")
	}

	sentID := req.ID.Text
	id, err := req.ID.IssueID()
	if err != nil {
		return nil, errs.NewResultError(model.MsgDeleteFailed, sentID).WithCause(err)
	}

	if _, err := s.issues.DeleteByID(ctx, id); err != nil {
		return nil, errs.NewResultError(model.MsgDeleteFailed, sentID).WithCause(err)
	}

	return &model.MutationResult{
		Result: model.ResultSuccessfullyDeleted,
		ID:     sentID,
	}, nil
}
