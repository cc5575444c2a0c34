package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/engine"
	"github.com/wethinkt/go-csvview/internal/export"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
)

// Export formats.
const (
	formatCSV     = "csv"
	formatParquet = "parquet"
)

var errParquetToStdout = errors.New("parquet export needs an output file (-o)")

var (
	exportFilter  string
	exportColumn  string
	exportSort    string
	exportDesc    bool
	exportFormat  string
	exportOutput  string
	exportColumns []string
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the filtered, sorted rows of a file as CSV or Parquet",
	Long: `Apply a filter and sort to FILE and write the resulting rows.

--column restricts the filter to one column and --sort orders the rows by
one; both take a header name or a 0-based index. The filter is a
case-sensitive substring match.

Examples:
  csvview export sales.csv --filter Paris --sort amount --desc
  csvview export sales.csv --columns id,city -o cities.csv
  csvview export sales.csv --format parquet -o sales.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "keep rows containing this text")
	exportCmd.Flags().StringVar(&exportColumn, "column", "", "only test this column against the filter")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "sort by this column")
	exportCmd.Flags().BoolVar(&exportDesc, "desc", false, "sort descending")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", formatCSV, "output format (csv|parquet)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file (default stdout)")
	exportCmd.Flags().StringSliceVar(&exportColumns, "columns", nil, "columns to write, in order (default all)")
}

// exportQuery builds the engine query from the export flags.
func exportQuery(store *dataset.Store) (view.Query, error) {
	q := view.Query{Filter: exportFilter, FilterColumn: view.AllColumns}
	if exportColumn != "" {
		col, err := store.ResolveColumn(exportColumn)
		if err != nil {
			return view.Query{}, fmt.Errorf("--column: %w", err)
		}
		q.FilterColumn = col
	}
	if exportSort != "" {
		col, err := store.ResolveColumn(exportSort)
		if err != nil {
			return view.Query{}, fmt.Errorf("--sort: %w", err)
		}
		q.Sort = view.Sort{Column: col, Direction: dataset.Ascending, Active: true}
		if exportDesc {
			q.Sort.Direction = dataset.Descending
		}
	}
	return q, nil
}

func exportSelectionColumns(store *dataset.Store) ([]int, error) {
	if len(exportColumns) == 0 {
		return nil, nil
	}
	cols := make([]int, 0, len(exportColumns))
	for _, ref := range exportColumns {
		col, err := store.ResolveColumn(strings.TrimSpace(ref))
		if err != nil {
			return nil, fmt.Errorf("--columns: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format != formatCSV && format != formatParquet {
		return fmt.Errorf("unknown format %q (want csv or parquet)", exportFormat)
	}
	if format == formatParquet && exportOutput == "-" {
		return errParquetToStdout
	}

	store, err := dataset.Load(cmd.Context(), args[0], datasetOptions(cfg))
	if err != nil {
		return err
	}
	q, err := exportQuery(store)
	if err != nil {
		return err
	}
	cols, err := exportSelectionColumns(store)
	if err != nil {
		return err
	}
	sel := export.Selection{Rows: engine.Compute(store, q), Columns: cols}
	tuilog.Log.Info("Exporting", "path", store.Path, "rows", len(sel.Rows), "format", format, "output", exportOutput)

	switch {
	case format == formatParquet:
		err = export.Parquet(cmd.Context(), exportOutput, store, sel)
	case exportOutput == "-":
		return export.CSV(cmd.OutOrStdout(), store, sel)
	default:
		err = export.WriteCSVFile(exportOutput, store, sel)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(sel.Rows), filepath.Clean(exportOutput))
	return nil
}
