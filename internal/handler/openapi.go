package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/ui"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the API reference UI, which loads
// /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the docs page uncached so doc updates show at once.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	static, err := ui.StaticFS()
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}

	templateBytes, err := fs.ReadFile(static, "openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTMLBlob(http.StatusOK, templateBytes); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
