package export

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// Parquet writes the selection to a Parquet file at path. The rows are
// staged as CSV and converted by an in-memory DuckDB instance, which also
// infers the column types.
func Parquet(ctx context.Context, path string, store *dataset.Store, sel Selection) error {
	defer tuilog.Log.Timed("export.Parquet", "path", path)()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	staged, err := os.CreateTemp("", "csvview-*.csv")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer os.Remove(staged.Name())

	bw := bufio.NewWriter(staged)
	if err := write(bw, store, sel, ','); err != nil {
		staged.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		staged.Close()
		return err
	}
	if err := staged.Close(); err != nil {
		return err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(
		"COPY (SELECT * FROM read_csv(%s, header = true, delim = ',', quote = '\"')) TO %s (FORMAT PARQUET)",
		quote(staged.Name()), quote(path))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("export parquet: %w", err)
	}
	return nil
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
