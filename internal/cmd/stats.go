package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/profile"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Print column statistics for a file",
	Long: `Print the inferred type, distinct values, empty fields and value range
of every column in FILE.

Examples:
  csvview stats sales.csv
  csvview stats sales.csv --json | jq '.columns[0]'`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

// statsOutput is the --json form of `csvview stats`.
type statsOutput struct {
	Path    string           `json:"path"`
	Rows    int              `json:"rows"`
	Skipped int              `json:"skipped"`
	Columns []profile.Column `json:"columns"`
}

// maxUniquePreview bounds the unique values listed in the table output.
const maxUniquePreview = 5

func init() {
	statsCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := dataset.Load(cmd.Context(), args[0], datasetOptions(cfg))
	if err != nil {
		return err
	}
	cols := profile.Compute(store, cfg.Profile.MaxUnique)
	out := cmd.OutOrStdout()

	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statsOutput{
			Path:    store.Path,
			Rows:    store.Len(),
			Skipped: store.Skipped,
			Columns: cols,
		})
	}

	fmt.Fprintf(out, "%s: %d rows", store.Path, store.Len())
	if store.Skipped > 0 {
		fmt.Fprintf(out, " (%d skipped)", store.Skipped)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE\tDISTINCT\tEMPTY\tMIN\tMAX\tVALUES")
	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			c.Name, c.Type, c.UniqueCount, c.Empty, c.Min, c.Max, uniquePreview(c))
	}
	return w.Flush()
}

func uniquePreview(c profile.Column) string {
	vals := c.Unique
	more := c.UniqueCount - len(vals)
	if len(vals) > maxUniquePreview {
		more += len(vals) - maxUniquePreview
		vals = vals[:maxUniquePreview]
	}
	s := strings.Join(vals, ", ")
	if more > 0 {
		s += fmt.Sprintf(", … (+%d)", more)
	}
	return s
}
