package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/deppfellow/issue-tracker/internal/middleware"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth reports the overall status plus one entry per configured
// dependency check. It answers 200 when every check passes and 503
// otherwise. Redis is only checked when an address is configured.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"driver":      h.server.Config.Database.Driver,
		"checks":      checks,
	}

	isHealthy := true
	cfg := h.server.Config.Observability.HealthChecks

	if cfg.Enabled {
		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		defer cancel()

		if cfg.Has("database") {
			isHealthy = h.runCheck(ctx, logger, checks, "database", h.pingStore) && isHealthy
		}

		if cfg.Has("redis") && h.server.Redis != nil {
			isHealthy = h.runCheck(ctx, logger, checks, "redis", func(ctx context.Context) error {
				return h.server.Redis.Ping(ctx).Err()
			}) && isHealthy
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// pingStore pings Postgres. The memory store is always reachable.
func (h *HealthHandler) pingStore(ctx context.Context) error {
	if h.server.Config.Database.Driver == config.DriverMemory || h.server.DB == nil {
		return nil
	}
	return h.server.DB.Ping(ctx)
}

// runCheck runs ping, stores its result under name in checks and reports
// whether it passed.
func (h *HealthHandler) runCheck(
	ctx context.Context,
	logger zerolog.Logger,
	checks map[string]interface{},
	name string,
	ping func(context.Context) error,
) bool {
	checkStart := time.Now()
	err := ping(ctx)
	took := time.Since(checkStart)

	if err != nil {
		checks[name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": took.String(),
			"error":         err.Error(),
		}

		logger.Error().
			Err(err).
			Dur("response_time", took).
			Msgf("%s health check failed", name)

		h.recordHealthEvent(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": took.Milliseconds(),
			"error_message":    err.Error(),
		})
		return false
	}

	checks[name] = map[string]interface{}{
		"status":        "healthy",
		"response_time": took.String(),
	}
	return true
}

func (h *HealthHandler) recordHealthEvent(params map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", params)
	}
}
