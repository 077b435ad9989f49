package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/ui"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the sample front-end pages.
type PageHandler struct {
	Handler
}

func NewPageHandler(s *server.Server) *PageHandler {
	return &PageHandler{
		Handler: NewHandler(s),
	}
}

// Index serves the landing page.
func (h *PageHandler) Index(c echo.Context) error {
	return h.serveView(c, "index.html")
}

// Project serves the issue page of the project in the path. The page reads
// the project from its own URL.
func (h *PageHandler) Project(c echo.Context) error {
	return h.serveView(c, "issue.html")
}

func (h *PageHandler) serveView(c echo.Context, name string) error {
	page, err := ui.View(name)
	if err != nil {
		return fmt.Errorf("failed to read view %s: %w", name, err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}
