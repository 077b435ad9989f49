package router

import (
	"github.com/deppfellow/issue-tracker/internal/handler"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/ui"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerSystemRoutes registers the endpoints that are not part of the
// issue API: health, docs, the docs assets and, when enabled, metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) error {
	r.GET("/status", h.Health.CheckHealth)

	static, err := ui.StaticFS()
	if err != nil {
		return err
	}
	r.StaticFS("/static", static)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	if s.Metrics != nil {
		r.GET(s.Config.Observability.Metrics.Path, echo.WrapHandler(
			promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry}),
		))
	}

	return nil
}
