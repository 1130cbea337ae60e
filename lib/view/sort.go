package view

import (
	"sort"
	"strings"
)

// --------------------------------------------------------------------------
// Sort State
// --------------------------------------------------------------------------

// Direction is the sort direction of a column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState selects the sorted column and direction. An empty column means
// "preserve fetch order".
type SortState struct {
	Column    string
	Direction Direction
}

// --------------------------------------------------------------------------
// Sort Keys
// --------------------------------------------------------------------------

// SortKey declares how to extract the comparison key of one column. Exactly
// one of Text and Num is set: text keys compare case-insensitively, numeric
// keys compare as numbers.
type SortKey[T any] struct {
	Text func(T) string
	Num  func(T) int
}

// compare returns the three-way comparison of two rows under this key.
func (k SortKey[T]) compare(a, b T) int {
	if k.Num != nil {
		switch {
		case k.Num(a) < k.Num(b):
			return -1
		case k.Num(a) > k.Num(b):
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(k.Text(a)), strings.ToLower(k.Text(b)))
}

// --------------------------------------------------------------------------
// Sorting
// --------------------------------------------------------------------------

// Sort orders rows by the selected column. An empty or unknown column
// returns the input unchanged (stable passthrough). Otherwise the rows are
// copied and stably sorted; Descending flips the sign of the three-way
// compare, not the input order, so ties keep their original relative order
// in both directions. The input slice is never mutated.
func Sort[T any](rows []T, column string, direction Direction, keys map[string]SortKey[T]) []T {
	if column == "" {
		return rows
	}

	key, ok := keys[column]
	if !ok {
		return rows
	}

	sign := 1
	if direction == Descending {
		sign = -1
	}

	sorted := make([]T, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sign*key.compare(sorted[i], sorted[j]) < 0
	})

	return sorted
}
