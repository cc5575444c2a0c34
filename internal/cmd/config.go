package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration",
	Long: `Show where the configuration lives and what it contains.

The file is created with defaults on first run. Set CSVVIEW_HOME to use a
different directory.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := cfg
		if shown.Server.Token != "" {
			shown.Server.Token = "[REDACTED]"
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(shown)
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
