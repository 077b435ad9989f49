package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/deppfellow/issue-tracker/internal/metrics"
	"github.com/deppfellow/issue-tracker/internal/middleware"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/deppfellow/issue-tracker/internal/sqlerr"
	"github.com/deppfellow/issue-tracker/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// Handler holds the shared application dependencies and is embedded by the
// concrete handlers.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Handle wraps a typed endpoint into an echo.HandlerFunc.
//
// For every request it allocates a fresh *T, binds and validates it, runs
// handler and writes the result as JSON with status. Along the way it logs,
// annotates the New Relic transaction and counts the request outcome.
//
//	api.POST("/issues/:project", Handle[model.CreateIssueRequest](h.Handler, h.Issue.CreateIssue, http.StatusOK))
func Handle[T any, PT interface {
	*T
	validation.Validatable
}, Res any](
	h Handler,
	handler func(c echo.Context, req PT) (Res, error),
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := PT(new(T))
		return handleRequest(h, c, req, func(c echo.Context, req PT) (any, error) {
			return handler(c, req)
		}, status)
	}
}

func handleRequest[Req validation.Validatable](
	h Handler,
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	status int,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Info().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		h.server.Metrics.ObserveRequest(method, route, outcomeOf(err))
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)
	totalDuration := time.Since(start)

	h.server.Metrics.ObserveRequest(method, route, outcomeOf(err))

	if err != nil {
		logger.Info().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler returned an error")

		if txn != nil {
			if outcomeOf(err) == metrics.OutcomeFailed {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return c.JSON(status, result)
}

// outcomeOf sorts a handler result for the request counter: rejected when
// the client is to blame, failed when the store or the server is.
func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}

	var resultErr *errs.ResultError
	if errors.As(err, &resultErr) {
		if sqlerr.Classify(resultErr.Cause()).RequestCaused() {
			return metrics.OutcomeRejected
		}
		return metrics.OutcomeFailed
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status < http.StatusInternalServerError {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}
