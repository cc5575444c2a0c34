package server

import (
	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/registry"
	"github.com/wethinkt/go-csvview/internal/view"
	"github.com/wethinkt/go-csvview/internal/window"
)

const (
	defaultWindow = 100
	maxWindow     = 1000
)

// RowsResponse is one window of a filtered, sorted dataset.
type RowsResponse struct {
	Path       string        `json:"path"`
	Generation uint64        `json:"generation"`
	Columns    []string      `json:"columns"`
	Total      int           `json:"total"`  // rows matching the query
	Offset     int           `json:"offset"` // position of rows[0] in the result
	Rows       []RowResponse `json:"rows"`
}

// RowResponse is one row of a RowsResponse.
type RowResponse struct {
	Index   int         `json:"index"` // row number in the file, 0-based
	Values  []string    `json:"values"`
	Matches []CellMatch `json:"matches,omitempty"`
}

// CellMatch marks where the filter term occurs in one field.
type CellMatch struct {
	Column int           `json:"column"`
	Spans  []window.Span `json:"spans"`
}

// resolveColumn is Store.ResolveColumn with an empty reference meaning -1.
func resolveColumn(store *dataset.Store, ref string) (int, error) {
	if ref == "" {
		return -1, nil
	}
	return store.ResolveColumn(ref)
}

// buildQuery turns request parameters into an engine query.
func buildQuery(store *dataset.Store, filter, column, sortBy string, desc bool) (view.Query, error) {
	q := view.Query{Filter: filter, FilterColumn: view.AllColumns}

	col, err := resolveColumn(store, column)
	if err != nil {
		return view.Query{}, err
	}
	if col >= 0 {
		q.FilterColumn = col
	}

	sortCol, err := resolveColumn(store, sortBy)
	if err != nil {
		return view.Query{}, err
	}
	if sortCol >= 0 {
		q.Sort = view.Sort{Column: sortCol, Direction: dataset.Ascending, Active: true}
		if desc {
			q.Sort.Direction = dataset.Descending
		}
	}
	return q, nil
}

// clampRange applies the default and maximum window size.
func clampRange(start, end int) (int, int) {
	start = max(start, 0)
	if end <= start {
		end = start + defaultWindow
	}
	return start, min(end, start+maxWindow)
}

// buildRows renders rows [start, end) of a query result.
func buildRows(rows registry.Rows, q view.Query, start, end, overscan int) RowsResponse {
	store := rows.Store()
	win := window.Slice(rows, start, end, overscan)
	resp := RowsResponse{
		Path:       store.Path,
		Generation: store.Generation,
		Columns:    store.Columns,
		Total:      win.Total,
		Offset:     win.Offset,
		Rows:       make([]RowResponse, win.Len()),
	}
	for i, row := range win.Rows {
		r := RowResponse{Index: win.Indices[i], Values: row}
		if q.Filter != "" {
			for c, v := range row {
				if q.FilterColumn >= 0 && c != q.FilterColumn {
					continue
				}
				if spans := window.Highlight(v, q.Filter); len(spans) > 0 {
					r.Matches = append(r.Matches, CellMatch{Column: c, Spans: spans})
				}
			}
		}
		resp.Rows[i] = r
	}
	return resp
}
