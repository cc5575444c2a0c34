// Package view holds the per-tab configuration over a dataset: which
// dataset is shown, the filter term, the sort, and which columns are visible.
//
// A State is plain data owned by the UI goroutine. Setters report whether
// anything that feeds a recomputation changed; the caller decides when to
// submit work. Snapshot captures those inputs so results computed from an
// older configuration can be recognised and dropped.
package view

import (
	"maps"
	"slices"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

// ID identifies a view (one tab).
type ID int

// AllColumns is the FilterColumn value that tests every field.
const AllColumns = -1

// Sort is the active sort of a view. The zero value means unsorted.
type Sort struct {
	Column    int
	Direction dataset.Direction
	Active    bool
}

// Query is what the engine needs to compute a row sequence.
type Query struct {
	Filter       string
	FilterColumn int
	Sort         Sort
}

// Snapshot is the set of inputs a computed result depends on.
// Two snapshots are equal exactly when their results are interchangeable.
type Snapshot struct {
	Dataset      string
	Generation   uint64
	Filter       string
	FilterColumn int
	Sort         Sort
}

// Query returns the engine query encoded in s.
func (s Snapshot) Query() Query {
	return Query{Filter: s.Filter, FilterColumn: s.FilterColumn, Sort: s.Sort}
}

// Identity reports whether s selects every row in master order.
func (s Snapshot) Identity() bool {
	return s.Filter == "" && !s.Sort.Active
}

// State is the configuration of one view.
type State struct {
	ID           ID
	Dataset      string
	Filter       string
	FilterColumn int
	Sort         Sort

	// columns maps dataset id to per-column visibility.
	columns map[string][]bool
}

// New returns an empty view: no dataset, no filter, unsorted.
func New(id ID) *State {
	return &State{
		ID:           id,
		FilterColumn: AllColumns,
		columns:      make(map[string][]bool),
	}
}

// SetDataset points the view at another dataset. The filter and sort are
// kept, as the tab keeps its toolbar state when switching files.
func (s *State) SetDataset(id string) bool {
	if s.Dataset == id {
		return false
	}
	s.Dataset = id
	return true
}

func (s *State) SetFilter(term string) bool {
	if s.Filter == term {
		return false
	}
	s.Filter = term
	return true
}

func (s *State) ClearFilter() bool {
	return s.SetFilter("")
}

// SetFilterColumn restricts filtering to one column. Negative values
// restore matching against every column.
func (s *State) SetFilterColumn(col int) bool {
	if col < 0 {
		col = AllColumns
	}
	if s.FilterColumn == col {
		return false
	}
	s.FilterColumn = col
	return true
}

// SetSort sorts by col in dir. A negative column clears the sort.
func (s *State) SetSort(col int, dir dataset.Direction) bool {
	if col < 0 {
		return s.ClearSort()
	}
	next := Sort{Column: col, Direction: dir, Active: true}
	if s.Sort == next {
		return false
	}
	s.Sort = next
	return true
}

// CycleSort advances col through ascending, descending and unsorted.
// Selecting a different column starts again at ascending.
func (s *State) CycleSort(col int) bool {
	switch {
	case col < 0:
		return s.ClearSort()
	case !s.Sort.Active || s.Sort.Column != col:
		return s.SetSort(col, dataset.Ascending)
	case s.Sort.Direction == dataset.Ascending:
		return s.SetSort(col, dataset.Descending)
	default:
		return s.ClearSort()
	}
}

func (s *State) ClearSort() bool {
	if !s.Sort.Active {
		return false
	}
	s.Sort = Sort{}
	return true
}

// EnsureColumns makes sure the visibility map for dataset id has n entries.
// Unseen datasets, and datasets whose width changed on reload, start with
// every column visible.
func (s *State) EnsureColumns(id string, n int) {
	if cols, ok := s.columns[id]; ok && len(cols) == n {
		return
	}
	cols := make([]bool, n)
	for i := range cols {
		cols[i] = true
	}
	s.columns[id] = cols
}

// ToggleColumn flips the visibility of column i of the current dataset.
// It reports whether the column exists. Visibility never affects the
// computed rows, only their presentation.
func (s *State) ToggleColumn(i int) bool {
	cols := s.columns[s.Dataset]
	if i < 0 || i >= len(cols) {
		return false
	}
	cols[i] = !cols[i]
	return true
}

// SetColumnVisible sets the visibility of column i of the current dataset
// and reports whether it changed.
func (s *State) SetColumnVisible(i int, visible bool) bool {
	cols := s.columns[s.Dataset]
	if i < 0 || i >= len(cols) || cols[i] == visible {
		return false
	}
	cols[i] = visible
	return true
}

// Visible reports whether column i of the current dataset is shown.
// Columns without a recorded preference are visible.
func (s *State) Visible(i int) bool {
	cols := s.columns[s.Dataset]
	if i < 0 || i >= len(cols) {
		return true
	}
	return cols[i]
}

// VisibleColumns returns the indices of the visible columns among the
// first n columns of the current dataset.
func (s *State) VisibleColumns(n int) []int {
	out := make([]int, 0, n)
	for i := range n {
		if s.Visible(i) {
			out = append(out, i)
		}
	}
	return out
}

// Header annotates names with this view's visibility and sort.
func (s *State) Header(names []string) []dataset.Column {
	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		cols[i] = dataset.Column{Name: name, Visible: s.Visible(i)}
		if s.Sort.Active && s.Sort.Column == i {
			dir := s.Sort.Direction
			cols[i].Sort = &dir
		}
	}
	return cols
}

// Clone returns a new view that starts on the same dataset with a deep copy
// of the column preferences. Filter and sort start empty.
func (s *State) Clone(id ID) *State {
	c := New(id)
	c.Dataset = s.Dataset
	c.columns = maps.Clone(s.columns)
	for k, v := range c.columns {
		c.columns[k] = slices.Clone(v)
	}
	return c
}

// Snapshot captures the inputs for a computation against generation gen.
// A non-empty global term replaces the view's own filter and searches
// every column; the stored filter is left untouched.
func (s *State) Snapshot(gen uint64, global string) Snapshot {
	snap := Snapshot{
		Dataset:      s.Dataset,
		Generation:   gen,
		Filter:       s.Filter,
		FilterColumn: s.FilterColumn,
		Sort:         s.Sort,
	}
	if global != "" {
		snap.Filter = global
		snap.FilterColumn = AllColumns
	}
	return snap
}
