package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field names an issue attribute as it appears on the wire.
type Field string

const (
	FieldID         Field = "_id"
	FieldProject    Field = "project"
	FieldIssueTitle Field = "issue_title"
	FieldIssueText  Field = "issue_text"
	FieldCreatedBy  Field = "created_by"
	FieldAssignedTo Field = "assigned_to"
	FieldStatusText Field = "status_text"
	FieldCreatedOn  Field = "created_on"
	FieldUpdatedOn  Field = "updated_on"
	FieldOpen       Field = "open"
)

// Kind is the storage type of a field; it decides how raw request text is cast.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindTime
	KindID
)

var fieldKinds = map[Field]Kind{
	FieldID:         KindID,
	FieldProject:    KindText,
	FieldIssueTitle: KindText,
	FieldIssueText:  KindText,
	FieldCreatedBy:  KindText,
	FieldAssignedTo: KindText,
	FieldStatusText: KindText,
	FieldCreatedOn:  KindTime,
	FieldUpdatedOn:  KindTime,
	FieldOpen:       KindBool,
}

// UpdatableFields lists, in a stable order, the fields a client may replace
// through a partial update. project and the timestamps are not among them.
var UpdatableFields = []Field{
	FieldIssueTitle,
	FieldIssueText,
	FieldCreatedBy,
	FieldAssignedTo,
	FieldStatusText,
	FieldOpen,
}

// ParseField resolves a wire name to a known field.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldKinds[f]
	return f, ok
}

// Kind returns the storage type of f.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// Updatable reports whether f may be changed by a partial update.
func (f Field) Updatable() bool {
	for _, u := range UpdatableFields {
		if u == f {
			return true
		}
	}
	return false
}

func (f Field) String() string {
	return string(f)
}

// Boolean spellings accepted from query strings and form bodies.
var (
	trueValues  = map[string]bool{"true": true, "1": true, "yes": true}
	falseValues = map[string]bool{"false": true, "0": true, "no": true}
)

// Cast converts raw request text into the typed value of f:
// string for text fields, bool for open, time.Time (UTC) for timestamps and
// the canonical UUID string for _id. Failures wrap ErrInvalidValue, or
// ErrMalformedID for _id.
func (f Field) Cast(raw string) (any, error) {
	switch f.Kind() {
	case KindBool:
		v := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case trueValues[v]:
			return true, nil
		case falseValues[v]:
			return false, nil
		}
		return nil, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, f, raw)

	case KindTime:
		t, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a timestamp", ErrInvalidValue, f, raw)
		}
		return t, nil

	case KindID:
		id, err := ParseID(raw)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	}

	return raw, nil
}

// ParseID parses an issue identifier. Anything that is not a UUID wraps
// ErrMalformedID.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return id, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format")
}
