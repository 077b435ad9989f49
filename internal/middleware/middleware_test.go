package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.Driver = config.DriverMemory
	if mutate != nil {
		mutate(cfg)
	}
	logger := zerolog.Nop()

	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)
	return s
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	mw := NewMiddlewares(s)
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(RequestID(), mw.ContextEnhancer.EnhanceContext())
	return e
}

func TestGlobalErrorHandler_ResultError(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.PUT("/x", func(c echo.Context) error {
		return errs.NewResultError(model.MsgUpdateFailed, "abc").WithCause(model.ErrIssueNotFound)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"could not update","_id":"abc"}`, rec.Body.String())
}

func TestGlobalErrorHandler_NotFound(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/only-get", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nowhere"},
		{http.MethodPost, "/only-get"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Not Found", rec.Body.String())
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
		})
	}
}

func TestGlobalErrorHandler_HTTPErrorShape(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.POST("/bad", func(c echo.Context) error {
		return errs.NewBadRequestError("Invalid request parameters", false, nil, []errs.FieldError{{Field: "body", Error: "malformed"}})
	})
	e.GET("/boom", func(c echo.Context) error {
		return fmt.Errorf("driver exploded")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bad", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body.Code)
	assert.Len(t, body.Errors, 1)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "driver exploded")
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(errs.NewResultError(model.MsgMissingID, "")))
	assert.Equal(t, http.StatusNotFound, statusFromError(echo.ErrMethodNotAllowed))
	assert.Equal(t, http.StatusTooManyRequests, statusFromError(errs.NewTooManyRequestsError("slow down")))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(fmt.Errorf("boom")))
}

func TestRequestID(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/id", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))

	for _, bad := range []string{"has space", strings.Repeat("x", maxRequestIDLength+1)} {
		req = httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, bad)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36)
	}
}

func TestEnhanceContext_LoggerInRequestContext(t *testing.T) {
	s := newTestServer(t, nil)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s.Logger = &logger

	e := newTestEcho(s)
	e.GET("/log/:project", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from the store")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/log/apitest", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "from the store", line["message"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "apitest", line["project"])
	assert.Equal(t, "/log/:project", line["path"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.RPS = 1
		cfg.Server.RateLimit.Burst = 2
	})
	e := newTestEcho(s)
	e.GET("/limited", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewRateLimitMiddleware(s).Limit())

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestServer(t, nil)
	e := newTestEcho(s)
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewRateLimitMiddleware(s).Limit())

	for range 20 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
