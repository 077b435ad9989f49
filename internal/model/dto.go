package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"

	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator validates a RawValue by its text, so "required" rejects both
// absent and empty values.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if raw, ok := field.Interface().(RawValue); ok {
			return raw.Text
		}
		return nil
	}, RawValue{})
	return v
}

// ListIssuesRequest carries nothing bindable: list filters are arbitrary query
// parameters and are read straight from the request by the handler.
type ListIssuesRequest struct{}

func (r *ListIssuesRequest) Validate() error {
	return nil
}

// CreateIssueRequest is the body of POST /api/issues/:project. JSON scalars
// are accepted as text; they are cast when the issue is built.
type CreateIssueRequest struct {
	IssueTitle RawValue `json:"issue_title" form:"issue_title" validate:"required"`
	IssueText  RawValue `json:"issue_text" form:"issue_text" validate:"required"`
	CreatedBy  RawValue `json:"created_by" form:"created_by" validate:"required"`
	AssignedTo RawValue `json:"assigned_to" form:"assigned_to"`
	StatusText RawValue `json:"status_text" form:"status_text"`
}

// Values maps every field a client may set at creation to what it sent.
func (r *CreateIssueRequest) Values() map[Field]RawValue {
	return map[Field]RawValue{
		FieldIssueTitle: r.IssueTitle,
		FieldIssueText:  r.IssueText,
		FieldCreatedBy:  r.CreatedBy,
		FieldAssignedTo: r.AssignedTo,
		FieldStatusText: r.StatusText,
	}
}

// Validate rejects a request missing any required field. Which field is
// missing is kept as the cause for logs only.
func (r *CreateIssueRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errs.NewResultError(MsgRequiredFieldsMissing, "").
			WithCause(fmt.Errorf("%w: %w", ErrInvalidValue, err))
	}
	return nil
}

// UpdateIssueRequest is the body of PUT /api/issues/:project: the target _id
// plus any updatable field.
//
// Ignored lists the other non-empty body keys (project, created_on, unknown
// names). They count as a requested update, so the issue's updated_on is
// refreshed, but their values are never applied.
type UpdateIssueRequest struct {
	ID         RawValue `json:"_id" form:"_id"`
	IssueTitle RawValue `json:"issue_title" form:"issue_title"`
	IssueText  RawValue `json:"issue_text" form:"issue_text"`
	CreatedBy  RawValue `json:"created_by" form:"created_by"`
	AssignedTo RawValue `json:"assigned_to" form:"assigned_to"`
	StatusText RawValue `json:"status_text" form:"status_text"`
	Open       RawValue `json:"open" form:"open"`

	Ignored []string `json:"-"`
}

func (r *UpdateIssueRequest) targets() map[string]*RawValue {
	return map[string]*RawValue{
		string(FieldID):         &r.ID,
		string(FieldIssueTitle): &r.IssueTitle,
		string(FieldIssueText):  &r.IssueText,
		string(FieldCreatedBy):  &r.CreatedBy,
		string(FieldAssignedTo): &r.AssignedTo,
		string(FieldStatusText): &r.StatusText,
		string(FieldOpen):       &r.Open,
	}
}

// bind sets the fields named in body and records every other non-empty key
// in Ignored.
func (r *UpdateIssueRequest) bind(body map[string]RawValue) {
	targets := r.targets()
	r.Ignored = nil
	for key, v := range body {
		if dst, ok := targets[key]; ok {
			*dst = v
			continue
		}
		if !v.Empty() {
			r.Ignored = append(r.Ignored, key)
		}
	}
	sort.Strings(r.Ignored)
}

// UnmarshalJSON binds a JSON object body, keeping the keys no field binds.
func (r *UpdateIssueRequest) UnmarshalJSON(data []byte) error {
	var body map[string]RawValue
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	r.bind(body)
	return nil
}

// BindForm binds a urlencoded body, keeping the keys no field binds.
func (r *UpdateIssueRequest) BindForm(values url.Values) {
	body := make(map[string]RawValue, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			body[key] = Raw(vs[0])
		}
	}
	r.bind(body)
}

// Values maps every updatable field to what the client sent for it.
func (r *UpdateIssueRequest) Values() map[Field]RawValue {
	return map[Field]RawValue{
		FieldIssueTitle: r.IssueTitle,
		FieldIssueText:  r.IssueText,
		FieldCreatedBy:  r.CreatedBy,
		FieldAssignedTo: r.AssignedTo,
		FieldStatusText: r.StatusText,
		FieldOpen:       r.Open,
	}
}

// Changes is Values filtered through the UnchangedOnEmpty policy.
func (r *UpdateIssueRequest) Changes() map[Field]RawValue {
	changes := make(map[Field]RawValue)
	for field, v := range r.Values() {
		if UnchangedOnEmpty(v) {
			continue
		}
		changes[field] = v
	}
	return changes
}

// HasUpdates reports whether the body named anything besides _id with a
// non-empty value.
func (r *UpdateIssueRequest) HasUpdates() bool {
	return len(r.Changes()) > 0 || len(r.Ignored) > 0
}

func (r *UpdateIssueRequest) Validate() error {
	if r.ID.Empty() {
		return errs.NewResultError(MsgMissingID, "")
	}
	if !r.HasUpdates() {
		return errs.NewResultError(MsgNoUpdateFields, r.ID.Text)
	}
	return nil
}

// DeleteIssueRequest is the body (or query) of DELETE /api/issues/:project.
type DeleteIssueRequest struct {
	ID RawValue `json:"_id" form:"_id" query:"_id"`
}

func (r *DeleteIssueRequest) Validate() error {
	if r.ID.Empty() {
		return errs.NewResultError(MsgMissingID, "")
	}
	return nil
}

// MutationResult is the success body of update and delete.
type MutationResult struct {
	Result string `json:"result"`
	ID     string `json:"_id"`
}
