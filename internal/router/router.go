// Package router builds the echo router.
//
// It registers the global middleware chain and maps the route groups
// (system, issue API, sample front-end) to their handlers.
package router

import (
	"fmt"

	"github.com/deppfellow/issue-tracker/internal/handler"
	"github.com/deppfellow/issue-tracker/internal/middleware"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter returns the fully wired echo instance.
//
// Middleware order matters: the request id must exist before tracing and
// the context logger read it, and the request logger needs the context
// logger.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	if err := registerSystemRoutes(router, s, h); err != nil {
		return nil, fmt.Errorf("failed to register system routes: %w", err)
	}

	api := router.Group("/api", middlewares.RateLimit.Limit())
	registerIssueRoutes(api, h)

	if err := registerPageRoutes(router, h); err != nil {
		return nil, fmt.Errorf("failed to register page routes: %w", err)
	}

	return router, nil
}
