package sqlerr

import (
	"context"
	"errors"

	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the internal category of a failed issue operation. Clients only
// ever see the generic per-operation message; Kind goes to logs and metrics.
type Kind string

const (
	KindNone         Kind = ""
	KindNotFound     Kind = "not_found"
	KindMalformedID  Kind = "malformed_id"
	KindInvalidValue Kind = "invalid_value"
	KindUnavailable  Kind = "unavailable"
	KindCanceled     Kind = "canceled"
	KindConstraint   Kind = "constraint"
	KindInternal     Kind = "internal"
)

// Classify sorts err into a Kind. A nil error is KindNone.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	switch {
	case errors.Is(err, model.ErrIssueNotFound), errors.Is(err, pgx.ErrNoRows):
		return KindNotFound
	case errors.Is(err, model.ErrMalformedID):
		return KindMalformedID
	case errors.Is(err, model.ErrInvalidValue):
		return KindInvalidValue
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return KindUnavailable
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		switch ConvertPgError(pgerr).Code {
		case ConnectionException, AdminShutdown, InsufficientRes:
			return KindUnavailable
		case QueryCanceled:
			return KindCanceled
		case InvalidText:
			return KindInvalidValue
		case NotNullViolation, ForeignKeyViolation, UniqueViolation, CheckViolation:
			return KindConstraint
		}
	}

	return KindInternal
}

// RequestCaused reports whether k stems from what the client sent (or from
// the client going away) rather than from a failing store.
func (k Kind) RequestCaused() bool {
	switch k {
	case KindNone, KindNotFound, KindMalformedID, KindInvalidValue, KindCanceled:
		return true
	}
	return false
}
