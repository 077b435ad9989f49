package service

import (
	"github.com/deppfellow/issue-tracker/internal/repository"
	"github.com/deppfellow/issue-tracker/internal/server"
)

type Services struct {
	Issues *IssueService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	issueService := NewIssueService(s, repos.Issues)

	return &Services{
		Issues: issueService,
	}, nil
}
