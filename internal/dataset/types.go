// Package dataset holds the immutable master copy of one loaded
// delimited-text file and the reader that produces it.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
)

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Column describes one header column as a view presents it.
// Visibility and sort annotation belong to the view, not the store.
type Column struct {
	Name    string
	Visible bool
	Sort    *Direction // nil when the view is not sorted by this column
}

// Row is one record: a field per header column.
type Row []string

// Store is the master copy of one dataset. A Store is never mutated after
// Load returns; reloading a file produces a new Store.
type Store struct {
	// Path identifies the dataset (absolute, cleaned file path).
	Path string
	// Columns holds the header names in file order.
	Columns []string
	// Rows holds the records in file order. Row indices are stable.
	Rows []Row
	// Skipped counts records dropped for having the wrong field count.
	Skipped int
	// Delimiter is the field separator the file was read with.
	Delimiter rune
	// Generation is assigned by the registry on Register.
	Generation uint64
}

// Len returns the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Width returns the number of columns.
func (s *Store) Width() int {
	if s == nil {
		return 0
	}
	return len(s.Columns)
}

// Header returns the default presentation of the columns: all visible,
// none sorted.
func (s *Store) Header() []Column {
	cols := make([]Column, len(s.Columns))
	for i, name := range s.Columns {
		cols[i] = Column{Name: name, Visible: true}
	}
	return cols
}

// ColumnIndex returns the index of the named column, or -1.
func (s *Store) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ResolveColumn accepts a header name or a 0-based index. A name wins over
// an index when a header happens to be numeric.
func (s *Store) ResolveColumn(ref string) (int, error) {
	if i := s.ColumnIndex(ref); i >= 0 {
		return i, nil
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < s.Width() {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, ref)
}

// WithGeneration returns a shallow copy of s carrying gen. Rows are shared.
func (s *Store) WithGeneration(gen uint64) *Store {
	cp := *s
	cp.Generation = gen
	return &cp
}

var (
	// ErrNoHeader is returned for input without a header record.
	ErrNoHeader = errors.New("no header row")
	// ErrEmptyPath is returned when Load is called without a path.
	ErrEmptyPath = errors.New("empty dataset path")
	// ErrUnknownColumn is returned for column references that match no column.
	ErrUnknownColumn = errors.New("unknown column")
)
