package model

import (
	"net/url"
	"slices"
	"time"
)

// Condition constrains one field to any of Values (already cast).
type Condition struct {
	Field  Field
	Values []any
}

// Filter selects the issues of one project whose fields match every
// condition exactly.
type Filter struct {
	Project    string
	Conditions []Condition
}

// ParseFilter turns list query parameters into a Filter for project.
//
// The project parameter is always overridden by the path value, unknown
// parameters are ignored and repeated parameters match any of their values.
// Conditions come out sorted by field name so equal queries produce equal
// filters. A value that cannot be cast to its field type fails the whole
// filter.
func ParseFilter(project string, query url.Values) (Filter, error) {
	filter := Filter{Project: project}

	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		field, ok := ParseField(name)
		if !ok || field == FieldProject {
			continue
		}

		values := make([]any, 0, len(query[name]))
		for _, raw := range query[name] {
			v, err := field.Cast(raw)
			if err != nil {
				return Filter{}, err
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}

		filter.Conditions = append(filter.Conditions, Condition{Field: field, Values: values})
	}

	return filter, nil
}

// Matches reports whether issue satisfies the filter.
func (f Filter) Matches(issue *Issue) bool {
	if issue.Project != f.Project {
		return false
	}
	for _, cond := range f.Conditions {
		if !cond.matches(issue.Value(cond.Field)) {
			return false
		}
	}
	return true
}

func (c Condition) matches(actual any) bool {
	for _, want := range c.Values {
		if equalValues(actual, want) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
