package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"store not found", fmt.Errorf("update: %w", model.ErrIssueNotFound), KindNotFound},
		{"no rows", fmt.Errorf("delete: %w", pgx.ErrNoRows), KindNotFound},
		{"malformed id", fmt.Errorf("%w: \"x\"", model.ErrMalformedID), KindMalformedID},
		{"invalid value", fmt.Errorf("%w: open=\"maybe\"", model.ErrInvalidValue), KindInvalidValue},
		{"canceled", context.Canceled, KindCanceled},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindCanceled},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, KindUnavailable},
		{"connection failure", &pgconn.PgError{Code: "08006"}, KindUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, KindUnavailable},
		{"check violation", &pgconn.PgError{Code: "23514"}, KindConstraint},
		{"not null violation", &pgconn.PgError{Code: "23502"}, KindConstraint},
		{"bad uuid text", &pgconn.PgError{Code: "22P02"}, KindInvalidValue},
		{"syntax error", &pgconn.PgError{Code: "42601"}, KindInternal},
		{"anything else", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, ConnectionException, MapCode("08001"))
	assert.Equal(t, InsufficientRes, MapCode("53100"))
	assert.Equal(t, Other, MapCode("42P01"))
}

func TestDescribe(t *testing.T) {
	t.Run("check violation names the column", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23514", TableName: "issues", ConstraintName: "issues_issue_title_check"}
		assert.Equal(t, "The Issue Title value does not meet required conditions", Describe(err))
	})

	t.Run("not null", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23502", TableName: "issues", ColumnName: "created_by"}
		assert.Equal(t, "The Created By is required", Describe(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", Describe(errors.New("boom")))
	})
}

func TestHandleError(t *testing.T) {
	t.Run("http error passes through", func(t *testing.T) {
		in := errs.NewTooManyRequestsError("slow down")
		assert.Same(t, in, HandleError(in))
	})

	t.Run("not null violation becomes field error", func(t *testing.T) {
		err := HandleError(&pgconn.PgError{Code: "23502", TableName: "issues", ColumnName: "issue_text"})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "ISSUE_REQUIRED", httpErr.Code)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "issue_text", httpErr.Errors[0].Field)
	})

	t.Run("not found", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.ErrorAs(t, HandleError(model.ErrIssueNotFound), &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
	})

	t.Run("unknown is internal", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.ErrorAs(t, HandleError(errors.New("boom")), &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, "Internal Server Error", httpErr.Message)
	})
}

func TestKindRequestCaused(t *testing.T) {
	for _, k := range []Kind{KindNone, KindNotFound, KindMalformedID, KindInvalidValue, KindCanceled} {
		assert.True(t, k.RequestCaused(), k)
	}
	for _, k := range []Kind{KindUnavailable, KindConstraint, KindInternal} {
		assert.False(t, k.RequestCaused(), k)
	}
}
