package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if versionJSON {
			_ = json.NewEncoder(cmd.OutOrStdout()).Encode(version.GetInfo("csvview"))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String("csvview"))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
}
