package view

import (
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Filter State
// --------------------------------------------------------------------------

// FilterState maps a filterable column name to the raw user input for it.
// An empty string means "no constraint". The state lives for the lifetime of
// a category view and is reset when the category changes.
type FilterState map[string]string

// Set records the raw input for a column. Setting "" clears the constraint.
func (s FilterState) Set(column, raw string) {
	if raw == "" {
		delete(s, column)
		return
	}
	s[column] = raw
}

// --------------------------------------------------------------------------
// Match Kinds and Accessors
// --------------------------------------------------------------------------

// MatchKind declares how a column's raw filter input is compared.
type MatchKind int

const (
	// MatchContains is a case-insensitive substring match.
	MatchContains MatchKind = iota
	// MatchExact is a case-sensitive equality match against the stored value.
	MatchExact
	// MatchNumeric parses the input and compares for numeric equality.
	MatchNumeric
	// MatchBool parses the input as a boolean and compares against a
	// derived predicate (e.g. "copies available" meaning copies > 0).
	MatchBool
)

// Accessor declares the comparison kind of one column and how to extract its
// value from a row. Only the extractor matching Kind is consulted.
type Accessor[T any] struct {
	Kind MatchKind
	Text func(T) string
	Num  func(T) int
	Bool func(T) bool
}

// --------------------------------------------------------------------------
// Filtering
// --------------------------------------------------------------------------

// Filter narrows rows to those matching every active filter in state.
// Columns without an accessor and filters with unparseable numeric or
// boolean input are treated as unconstrained. The input slice is not
// mutated; the result is a new slice preserving relative order.
func Filter[T any](rows []T, state FilterState, fields map[string]Accessor[T]) []T {
	result := make([]T, 0, len(rows))

	for _, row := range rows {
		if matchesAll(row, state, fields) {
			result = append(result, row)
		}
	}

	return result
}

// matchesAll combines all active filters with logical AND.
func matchesAll[T any](row T, state FilterState, fields map[string]Accessor[T]) bool {
	for column, raw := range state {
		if raw == "" {
			continue
		}

		field, ok := fields[column]
		if !ok {
			continue
		}

		if !matches(row, field, raw) {
			return false
		}
	}
	return true
}

func matches[T any](row T, field Accessor[T], raw string) bool {
	switch field.Kind {
	case MatchContains:
		return strings.Contains(strings.ToLower(field.Text(row)), strings.ToLower(raw))
	case MatchExact:
		return field.Text(row) == raw
	case MatchNumeric:
		want, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			// unparseable input constrains nothing
			return true
		}
		return field.Num(row) == want
	case MatchBool:
		want, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return true
		}
		return field.Bool(row) == want
	default:
		return true
	}
}
