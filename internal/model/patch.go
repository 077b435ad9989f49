package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawValue is a request value exactly as the client sent it, before it is cast
// to its field type. It accepts JSON strings, JSON scalars (true, 3) and
// form/query parameters. JSON objects and arrays are kept but never cast.
type RawValue struct {
	Text      string
	Present   bool
	Composite bool
}

// Raw returns a present RawValue holding text.
func Raw(text string) RawValue {
	return RawValue{Text: text, Present: true}
}

// UnmarshalJSON keeps the textual form of any JSON value; null means absent.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = RawValue{}
		return nil
	}
	if len(data) == 0 {
		*v = Raw("")
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Raw(s)
	case '{', '[':
		*v = RawValue{Text: string(data), Present: true, Composite: true}
	default:
		*v = Raw(string(data))
	}
	return nil
}

// UnmarshalParam lets echo bind form and query parameters into a RawValue.
func (v *RawValue) UnmarshalParam(param string) error {
	*v = Raw(param)
	return nil
}

// Empty reports whether v was left out, sent as null or sent as "".
func (v RawValue) Empty() bool {
	return !v.Present || v.Text == ""
}

// Cast converts v to the type of f. Objects and arrays fail with
// ErrMalformedID for _id and ErrInvalidValue for every other field.
func (v RawValue) Cast(f Field) (any, error) {
	if v.Composite {
		if f.Kind() == KindID {
			return nil, fmt.Errorf("%w: %s is not a scalar", ErrMalformedID, f)
		}
		return nil, fmt.Errorf("%w: %s is not a scalar", ErrInvalidValue, f)
	}
	return f.Cast(v.Text)
}

// IssueID casts the _id the client sent. Anything that is not an issue id
// wraps ErrMalformedID.
func (v RawValue) IssueID() (string, error) {
	id, err := v.Cast(FieldID)
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

// UnchangedOnEmpty is the partial-update policy. A field the client left out,
// sent as null or sent as the empty string keeps its current value: an empty
// string never clears a field, it means "no change requested".
func UnchangedOnEmpty(v RawValue) bool {
	return v.Empty()
}

// Patch is a cast partial update: the fields to replace and the new
// updated_on stamp that always accompanies them.
type Patch struct {
	Changes   map[Field]any
	UpdatedOn time.Time
}

// BuildPatch casts requested changes into a Patch stamped with now. Fields
// that are not updatable are rejected; values that do not cast wrap
// ErrInvalidValue.
func BuildPatch(changes map[Field]RawValue, now time.Time) (Patch, error) {
	patch := Patch{
		Changes:   make(map[Field]any, len(changes)),
		UpdatedOn: now,
	}
	for field, raw := range changes {
		if !field.Updatable() {
			return Patch{}, fmt.Errorf("%w: %s is not updatable", ErrInvalidValue, field)
		}
		v, err := raw.Cast(field)
		if err != nil {
			return Patch{}, err
		}
		patch.Changes[field] = v
	}
	return patch, nil
}

// Fields returns the changed fields in UpdatableFields order.
func (p Patch) Fields() []Field {
	fields := make([]Field, 0, len(p.Changes))
	for _, f := range UpdatableFields {
		if _, ok := p.Changes[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}
