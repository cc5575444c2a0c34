// Package export writes the rows a view currently shows to CSV or Parquet.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

// Selection picks what to write from a store.
type Selection struct {
	// Rows holds master row indices in output order. Nil writes every row.
	Rows []int
	// Columns holds column indices in output order. Nil writes every column.
	Columns []int
}

func (s Selection) columns(store *dataset.Store) ([]int, error) {
	if s.Columns == nil {
		cols := make([]int, store.Width())
		for i := range cols {
			cols[i] = i
		}
		return cols, nil
	}
	for _, c := range s.Columns {
		if c < 0 || c >= store.Width() {
			return nil, fmt.Errorf("column %d out of range (dataset has %d)", c, store.Width())
		}
	}
	return s.Columns, nil
}

// CSV writes the header and the selected rows of store to w, separated by
// the store's delimiter.
func CSV(w io.Writer, store *dataset.Store, sel Selection) error {
	comma := store.Delimiter
	if comma == 0 {
		comma = ','
	}
	return write(w, store, sel, comma)
}

// WriteCSVFile writes the selection to path. The file is replaced
// atomically, so readers never see a partial export.
func WriteCSVFile(path string, store *dataset.Store, sel Selection) error {
	var buf bytes.Buffer
	if err := CSV(&buf, store, sel); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func write(w io.Writer, store *dataset.Store, sel Selection, comma rune) error {
	cols, err := sel.columns(store)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma

	record := make([]string, len(cols))
	for i, c := range cols {
		record[i] = store.Columns[c]
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	writeRow := func(r int) error {
		row := store.Rows[r]
		for i, c := range cols {
			record[i] = row[c]
		}
		return cw.Write(record)
	}
	if sel.Rows == nil {
		for r := range store.Rows {
			if err := writeRow(r); err != nil {
				return err
			}
		}
	} else {
		for _, r := range sel.Rows {
			if r < 0 || r >= store.Len() {
				return fmt.Errorf("row %d out of range (dataset has %d)", r, store.Len())
			}
			if err := writeRow(r); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
