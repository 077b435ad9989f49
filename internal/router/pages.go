package router

import (
	"github.com/deppfellow/issue-tracker/internal/handler"
	"github.com/deppfellow/issue-tracker/internal/ui"
	"github.com/labstack/echo/v4"
)

// registerPageRoutes registers the sample front-end. It goes last so the
// catch-all project page never shadows a more specific route.
func registerPageRoutes(r *echo.Echo, h *handler.Handlers) error {
	public, err := ui.PublicFS()
	if err != nil {
		return err
	}
	r.StaticFS("/public", public)

	r.GET("/", h.Page.Index)
	r.GET("/:project", h.Page.Project)
	r.GET("/:project/", h.Page.Project)

	return nil
}
