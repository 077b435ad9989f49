package router

import (
	"net/http"

	"github.com/deppfellow/issue-tracker/internal/handler"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/labstack/echo/v4"
)

func registerIssueRoutes(api *echo.Group, h *handler.Handlers) {
	issues := api.Group("/issues")

	issues.GET("/:project", handler.Handle[model.ListIssuesRequest](h.Handler, h.Issue.ListIssues, http.StatusOK))
	issues.POST("/:project", handler.Handle[model.CreateIssueRequest](h.Handler, h.Issue.CreateIssue, http.StatusOK))
	issues.PUT("/:project", handler.Handle[model.UpdateIssueRequest](h.Handler, h.Issue.UpdateIssue, http.StatusOK))
	issues.DELETE("/:project", handler.Handle[model.DeleteIssueRequest](h.Handler, h.Issue.DeleteIssue, http.StatusOK))
}
