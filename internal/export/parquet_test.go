//go:build cgo

package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestParquet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "view.parquet")

	if err := Parquet(ctx, path, testStore(), Selection{Rows: []int{1, 2}, Columns: []int{0, 2}}); err != nil {
		t.Fatalf("Parquet: %v", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM read_parquet("+quote(path)+")").Scan(&count); err != nil {
		t.Fatalf("read_parquet: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var city string
	if err := db.QueryRowContext(ctx,
		"SELECT city FROM read_parquet("+quote(path)+") WHERE id = 2").Scan(&city); err != nil {
		t.Fatalf("query: %v", err)
	}
	if city != "Paris, TX" {
		t.Errorf("city = %q", city)
	}
}
