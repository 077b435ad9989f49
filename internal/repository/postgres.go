package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const issueColumns = `id::text, project, issue_title, issue_text, created_by,
	assigned_to, status_text, created_on, updated_on, open`

// columns whitelists the SQL expression of every filterable or updatable
// field. Nothing else is ever interpolated into a query.
var columns = map[model.Field]string{
	model.FieldID:         "id::text",
	model.FieldProject:    "project",
	model.FieldIssueTitle: "issue_title",
	model.FieldIssueText:  "issue_text",
	model.FieldCreatedBy:  "created_by",
	model.FieldAssignedTo: "assigned_to",
	model.FieldStatusText: "status_text",
	model.FieldCreatedOn:  "created_on",
	model.FieldUpdatedOn:  "updated_on",
	model.FieldOpen:       "open",
}

// PostgresIssueStore keeps issues in the issues table.
type PostgresIssueStore struct {
	pool *pgxpool.Pool
}

func NewPostgresIssueStore(pool *pgxpool.Pool) *PostgresIssueStore {
	return &PostgresIssueStore{pool: pool}
}

func scanIssue(row pgx.CollectableRow) (model.Issue, error) {
	var i model.Issue
	err := row.Scan(
		&i.ID,
		&i.Project,
		&i.IssueTitle,
		&i.IssueText,
		&i.CreatedBy,
		&i.AssignedTo,
		&i.StatusText,
		&i.CreatedOn,
		&i.UpdatedOn,
		&i.Open,
	)
	i.CreatedOn = i.CreatedOn.UTC()
	i.UpdatedOn = i.UpdatedOn.UTC()
	return i, err
}

func (r *PostgresIssueStore) Find(ctx context.Context, filter model.Filter) ([]model.Issue, error) {
	query, args, err := buildFindQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query issues of project %s", filter.Project)
	}

	issues, err := pgx.CollectRows(rows, scanIssue)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to collect issues of project %s", filter.Project)
	}
	return issues, nil
}

// buildFindQuery renders filter as one `column = ANY($n)` clause per
// condition, with the values as a typed array.
func buildFindQuery(filter model.Filter) (string, []any, error) {
	where := []string{"project = $1"}
	args := []any{filter.Project}

	for _, cond := range filter.Conditions {
		column, ok := columns[cond.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s is not filterable", model.ErrInvalidValue, cond.Field)
		}
		values, err := typedValues(cond)
		if err != nil {
			return "", nil, err
		}
		args = append(args, values)
		where = append(where, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}

	query := "SELECT " + issueColumns + " FROM issues WHERE " +
		strings.Join(where, " AND ") + " ORDER BY seq"
	return query, args, nil
}

func typedValues(cond model.Condition) (any, error) {
	switch cond.Field.Kind() {
	case model.KindBool:
		return collect[bool](cond)
	case model.KindTime:
		return collect[time.Time](cond)
	default:
		return collect[string](cond)
	}
}

func collect[T any](cond model.Condition) ([]T, error) {
	out := make([]T, 0, len(cond.Values))
	for _, v := range cond.Values {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%v has type %T", model.ErrInvalidValue, cond.Field, v, v)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *PostgresIssueStore) Insert(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	query := `
		INSERT INTO issues (project, issue_title, issue_text, created_by, assigned_to,
			status_text, created_on, updated_on, open)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + issueColumns

	rows, err := r.pool.Query(ctx, query,
		issue.Project,
		issue.IssueTitle,
		issue.IssueText,
		issue.CreatedBy,
		issue.AssignedTo,
		issue.StatusText,
		issue.CreatedOn,
		issue.UpdatedOn,
		issue.Open,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to insert issue into project %s", issue.Project)
	}

	created, err := pgx.CollectExactlyOneRow(rows, scanIssue)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to insert issue into project %s", issue.Project)
	}
	return &created, nil
}

func (r *PostgresIssueStore) UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Issue, error) {
	uid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	// A patch without changes still refreshes updated_on.
	fields := patch.Fields()

	args := []any{uid}
	sets := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		column, ok := columns[f]
		if !ok || !f.Updatable() {
			return nil, fmt.Errorf("%w: %s is not updatable", model.ErrInvalidValue, f)
		}
		args = append(args, patch.Changes[f])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, patch.UpdatedOn)
	sets = append(sets, fmt.Sprintf("updated_on = $%d", len(args)))

	query := "UPDATE issues SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 RETURNING " + issueColumns

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update issue %s", id)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanIssue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrIssueNotFound, "issue %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update issue %s", id)
	}
	return &updated, nil
}

func (r *PostgresIssueStore) DeleteByID(ctx context.Context, id string) (*model.Issue, error) {
	uid, err := model.ParseID(id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, "DELETE FROM issues WHERE id = $1 RETURNING "+issueColumns, uid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete issue %s", id)
	}

	deleted, err := pgx.CollectExactlyOneRow(rows, scanIssue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(model.ErrIssueNotFound, "issue %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete issue %s", id)
	}
	return &deleted, nil
}
