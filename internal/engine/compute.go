// Package engine computes the ordered, filtered row sequence of a view and
// runs those computations on a worker pool off the UI goroutine.
package engine

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/view"
)

// Compute returns the indices into store.Rows selected by q, in display
// order. An empty query returns every index in master order.
func Compute(store *dataset.Store, q view.Query) []int {
	if store == nil {
		return []int{}
	}
	idx := Filter(store, q.Filter, q.FilterColumn)
	if q.Sort.Active {
		Sort(store, idx, q.Sort.Column, q.Sort.Direction)
	}
	return idx
}

// Filter returns the indices of the rows that match term, in master order.
// col restricts the test to one column; out-of-range values test every column.
func Filter(store *dataset.Store, term string, col int) []int {
	if col >= store.Width() {
		col = view.AllColumns
	}
	idx := make([]int, 0, len(store.Rows))
	for i, row := range store.Rows {
		if Matches(row, term, col) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Matches reports whether a field of row contains term. The comparison is
// case-sensitive and an empty term matches every row.
func Matches(row dataset.Row, term string, col int) bool {
	if term == "" {
		return true
	}
	if col >= 0 {
		return col < len(row) && strings.Contains(row[col], term)
	}
	for _, field := range row {
		if strings.Contains(field, term) {
			return true
		}
	}
	return false
}

// Sort orders idx in place by column col. The sort is stable, so rows with
// equal keys keep their master order in either direction. Keys compare as
// numbers when every key in idx parses as one, and as byte strings
// otherwise. An out-of-range column leaves idx untouched.
func Sort(store *dataset.Store, idx []int, col int, dir dataset.Direction) {
	if col < 0 || col >= store.Width() || len(idx) < 2 {
		return
	}
	sign := 1
	if dir == dataset.Descending {
		sign = -1
	}

	if nums, ok := numericKeys(store, idx, col); ok {
		type keyed struct {
			row int
			key float64
		}
		ks := make([]keyed, len(idx))
		for i, r := range idx {
			ks[i] = keyed{row: r, key: nums[i]}
		}
		slices.SortStableFunc(ks, func(a, b keyed) int {
			return sign * cmp.Compare(a.key, b.key)
		})
		for i := range ks {
			idx[i] = ks[i].row
		}
		return
	}

	rows := store.Rows
	slices.SortStableFunc(idx, func(a, b int) int {
		return sign * strings.Compare(rows[a][col], rows[b][col])
	})
}

// numericKeys parses column col of every row in idx. It fails as soon as
// one value is not a number.
func numericKeys(store *dataset.Store, idx []int, col int) ([]float64, bool) {
	nums := make([]float64, len(idx))
	for i, r := range idx {
		f, err := strconv.ParseFloat(strings.TrimSpace(store.Rows[r][col]), 64)
		if err != nil {
			return nil, false
		}
		nums[i] = f
	}
	return nums, true
}
