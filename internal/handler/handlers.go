package handler

import (
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/service"
)

// Handlers groups all HTTP handlers so router setup receives one value.
type Handlers struct {
	Handler

	Issue   *IssueHandler
	Page    *PageHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Handler: NewHandler(s),
		Issue:   NewIssueHandler(s, services.Issues),
		Page:    NewPageHandler(s),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
