package handler

import (
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/service"
	"github.com/labstack/echo/v4"
)

// IssueHandler serves /api/issues/:project. The endpoints are registered
// through Handle, which binds and validates the request first.
type IssueHandler struct {
	Handler
	issueService *service.IssueService
}

func NewIssueHandler(s *server.Server, issueService *service.IssueService) *IssueHandler {
	return &IssueHandler{
		Handler:      NewHandler(s),
		issueService: issueService,
	}
}

// ListIssues treats every query parameter as an exact-match filter.
func (h *IssueHandler) ListIssues(c echo.Context, _ *model.ListIssuesRequest) ([]model.Issue, error) {
	return h.issueService.ListIssues(c.Request().Context(), c.Param("project"), c.QueryParams())
}

func (h *IssueHandler) CreateIssue(c echo.Context, req *model.CreateIssueRequest) (*model.Issue, error) {
	return h.issueService.CreateIssue(c.Request().Context(), c.Param("project"), req)
}

// UpdateIssue ignores the path project: the issue is addressed by _id.
func (h *IssueHandler) UpdateIssue(c echo.Context, req *model.UpdateIssueRequest) (*model.MutationResult, error) {
	return h.issueService.UpdateIssue(c.Request().Context(), req)
}

func (h *IssueHandler) DeleteIssue(c echo.Context, req *model.DeleteIssueRequest) (*model.MutationResult, error) {
	return h.issueService.DeleteIssue(c.Request().Context(), req)
}
