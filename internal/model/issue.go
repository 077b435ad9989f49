// Package model holds the issue entity and the rules that turn raw request
// values into typed filters and partial updates.
//
// Nothing in here talks to storage or HTTP. Repositories consume Filter and
// Patch, handlers consume the request/response types in dto.go.
package model

import (
	"errors"
	"time"
)

// Sentinel errors shared by every IssueStore implementation. They never reach
// the client directly: the service collapses them into the per-operation
// messages below and only logs/observes the distinction.
var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrMalformedID   = errors.New("malformed issue id")
	ErrInvalidValue  = errors.New("invalid field value")
)

// Client-facing messages of the issue API.
const (
	MsgFetchFailed            = "could not fetch issues"
	MsgRequiredFieldsMissing  = "required field(s) missing"
	MsgCreateFailed           = "could not create issue"
	MsgMissingID              = "missing _id"
	MsgNoUpdateFields         = "no update field(s) sent"
	MsgUpdateFailed           = "could not update"
	MsgDeleteFailed           = "could not delete"
	ResultSuccessfullyUpdated = "successfully updated"
	ResultSuccessfullyDeleted = "successfully deleted"
)

// Issue is a tracked title/description/status record scoped to a project.
type Issue struct {
	ID         string    `json:"_id"`
	Project    string    `json:"project"`
	IssueTitle string    `json:"issue_title"`
	IssueText  string    `json:"issue_text"`
	CreatedBy  string    `json:"created_by"`
	AssignedTo string    `json:"assigned_to"`
	StatusText string    `json:"status_text"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
	Open       bool      `json:"open"`
}

// NewIssue builds an open, not yet persisted issue for project. Both
// timestamps are set to now so a fresh issue always has
// created_on == updated_on. Values that do not cast to their field type wrap
// ErrInvalidValue.
func NewIssue(project string, req *CreateIssueRequest, now time.Time) (*Issue, error) {
	issue := &Issue{
		Project:   project,
		CreatedOn: now,
		UpdatedOn: now,
		Open:      true,
	}
	for field, raw := range req.Values() {
		if raw.Empty() {
			continue
		}
		v, err := raw.Cast(field)
		if err != nil {
			return nil, err
		}
		issue.set(field, v)
	}
	return issue, nil
}

// Value returns the typed value of field f, in the same representation
// Field.Cast produces, so filters can be evaluated in memory.
func (i *Issue) Value(f Field) any {
	switch f {
	case FieldID:
		return i.ID
	case FieldProject:
		return i.Project
	case FieldIssueTitle:
		return i.IssueTitle
	case FieldIssueText:
		return i.IssueText
	case FieldCreatedBy:
		return i.CreatedBy
	case FieldAssignedTo:
		return i.AssignedTo
	case FieldStatusText:
		return i.StatusText
	case FieldCreatedOn:
		return i.CreatedOn
	case FieldUpdatedOn:
		return i.UpdatedOn
	case FieldOpen:
		return i.Open
	}
	return nil
}

// Apply replaces the fields named by p in place and stamps UpdatedOn.
// Values are expected to be cast already (see BuildPatch).
func (i *Issue) Apply(p Patch) {
	for f, v := range p.Changes {
		i.set(f, v)
	}
	i.UpdatedOn = p.UpdatedOn
}

// set stores an already cast value. Fields without a setter are ignored.
func (i *Issue) set(f Field, v any) {
	switch f {
	case FieldIssueTitle:
		i.IssueTitle = v.(string)
	case FieldIssueText:
		i.IssueText = v.(string)
	case FieldCreatedBy:
		i.CreatedBy = v.(string)
	case FieldAssignedTo:
		i.AssignedTo = v.(string)
	case FieldStatusText:
		i.StatusText = v.(string)
	case FieldOpen:
		i.Open = v.(bool)
	}
}
