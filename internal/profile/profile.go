// Package profile derives per-column statistics from a dataset: the
// inferred value type, distinct values, blanks and the value range.
package profile

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindEmpty Kind = "empty"
	KindInt   Kind = "int"
	KindFloat Kind = "float"
	KindBool  Kind = "bool"
	KindText  Kind = "text"
)

// DefaultMaxUnique is used when Compute is called with maxUnique <= 0.
const DefaultMaxUnique = 50

// Column describes one column of a dataset.
type Column struct {
	Name        string   `json:"name"`
	Type        Kind     `json:"type"`
	Unique      []string `json:"unique"`       // first distinct values in sort order
	UniqueCount int      `json:"unique_count"` // number of distinct values
	Truncated   bool     `json:"truncated"`    // Unique holds fewer than UniqueCount values
	Empty       int      `json:"empty"`        // blank fields
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
}

// Compute profiles every column of store, keeping at most maxUnique
// distinct values per column.
func Compute(store *dataset.Store, maxUnique int) []Column {
	if maxUnique <= 0 {
		maxUnique = DefaultMaxUnique
	}
	cols := make([]Column, store.Width())
	for i, name := range store.Columns {
		cols[i] = column(store, i, name, maxUnique)
	}
	return cols
}

func column(store *dataset.Store, col int, name string, maxUnique int) Column {
	c := Column{Name: name}
	seen := make(map[string]struct{})
	isInt, isFloat, isBool := true, true, true
	values := 0

	for _, row := range store.Rows {
		v := row[col]
		if strings.TrimSpace(v) == "" {
			c.Empty++
			continue
		}
		values++
		seen[v] = struct{}{}
		if isInt {
			if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			isBool = parseBool(v)
		}
	}

	switch {
	case values == 0:
		c.Type = KindEmpty
	case isInt:
		c.Type = KindInt
	case isFloat:
		c.Type = KindFloat
	case isBool:
		c.Type = KindBool
	default:
		c.Type = KindText
	}

	distinct := make([]string, 0, len(seen))
	for v := range seen {
		distinct = append(distinct, v)
	}
	slices.SortFunc(distinct, compareFor(c.Type))

	c.UniqueCount = len(distinct)
	if len(distinct) > 0 {
		c.Min = distinct[0]
		c.Max = distinct[len(distinct)-1]
	}
	if len(distinct) > maxUnique {
		distinct = distinct[:maxUnique]
		c.Truncated = true
	}
	c.Unique = distinct
	return c
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func compareFor(k Kind) func(a, b string) int {
	if k != KindInt && k != KindFloat {
		return strings.Compare
	}
	return func(a, b string) int {
		fa, _ := strconv.ParseFloat(strings.TrimSpace(a), 64)
		fb, _ := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}
}
