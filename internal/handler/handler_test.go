package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/issue-tracker/internal/config"
	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/deppfellow/issue-tracker/internal/metrics"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/deppfellow/issue-tracker/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.Driver = config.DriverMemory
	cfg.Observability.HealthChecks.Timeout = time.Second
	logger := zerolog.Nop()

	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)
	return s
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, metrics.OutcomeSuccess},
		{"missing id", errs.NewResultError(model.MsgMissingID, ""), metrics.OutcomeRejected},
		{"not found", errs.NewResultError(model.MsgUpdateFailed, "x").WithCause(model.ErrIssueNotFound), metrics.OutcomeRejected},
		{"store down", errs.NewResultError(model.MsgFetchFailed, "").WithCause(assert.AnError), metrics.OutcomeFailed},
		{"bad body", errs.NewBadRequestError("bad", false, nil, nil), metrics.OutcomeRejected},
		{"internal", errs.NewInternalServerError(), metrics.OutcomeFailed},
		{"unknown", assert.AnError, metrics.OutcomeFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outcomeOf(tc.err))
		})
	}
}

func TestHandle_FreshRequestPerCall(t *testing.T) {
	h := NewHandler(newTestServer(t))

	var seen []string
	endpoint := Handle[model.DeleteIssueRequest](h, func(c echo.Context, req *model.DeleteIssueRequest) (*model.MutationResult, error) {
		seen = append(seen, req.ID.Text)
		return &model.MutationResult{Result: model.ResultSuccessfullyDeleted, ID: req.ID.Text}, nil
	}, http.StatusOK)

	e := echo.New()

	call := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := endpoint(c); err != nil {
			e.DefaultHTTPErrorHandler(err, c)
		}
		return rec
	}

	rec := call(`{"_id":"first"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":"successfully deleted","_id":"first"}`, rec.Body.String())

	// A second request without _id must not see the previous one.
	call(`{}`)
	assert.Equal(t, []string{"first"}, seen)
}

func TestHandle_ValidationErrorIsReturned(t *testing.T) {
	h := NewHandler(newTestServer(t))

	endpoint := Handle[model.UpdateIssueRequest](h, func(c echo.Context, req *model.UpdateIssueRequest) (*model.MutationResult, error) {
		t.Fatal("handler must not run")
		return nil, nil
	}, http.StatusOK)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"issue_text":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	var resultErr *errs.ResultError
	require.ErrorAs(t, endpoint(c), &resultErr)
	assert.Equal(t, model.MsgMissingID, resultErr.Message)
}

func TestCheckHealth_RedisDown(t *testing.T) {
	s := newTestServer(t)
	s.Redis = redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = s.Redis.Close() })

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	require.NoError(t, NewHealthHandler(s).CheckHealth(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])

	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"].(map[string]any)["status"])
	assert.Equal(t, "unhealthy", checks["redis"].(map[string]any)["status"])
}

func TestCheckHealth_Disabled(t *testing.T) {
	s := newTestServer(t)
	s.Config.Observability.HealthChecks.Enabled = false

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	require.NoError(t, NewHealthHandler(s).CheckHealth(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"checks":{}`)
}

func TestServeOpenAPIUI(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	require.NoError(t, NewOpenAPIHandler(newTestServer(t)).ServeOpenAPIUI(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")
}
