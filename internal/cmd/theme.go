package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/config"
	"github.com/wethinkt/go-csvview/internal/tui/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show and manage table themes",
	Long: `Show and manage table themes.

Themes are JSON files. Built-in themes: dark, light. User themes are read
from the themes/ directory next to the config file.

Examples:
  csvview theme              # Show the active theme
  csvview theme --json       # Output the active theme as JSON
  csvview theme list         # List all available themes
  csvview theme set light    # Switch themes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := theme.Current()
		if outputJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Theme, t.Description)
		return nil
	},
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Long:  `List all built-in and user themes. The active theme is marked with *.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, meta := range theme.ListAvailable() {
			marker := " "
			if meta.Name == cfg.Theme {
				marker = "*"
			}
			source := "built-in"
			if !meta.Embedded {
				source = meta.Path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s %-40s %s\n", marker, meta.Name, meta.Description, source)
		}
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the active theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := theme.LoadByName(args[0]); err != nil {
			return fmt.Errorf("theme %q: %w", args[0], err)
		}
		cfg.Theme = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to: %s\n", args[0])
		return nil
	},
}

func init() {
	themeCmd.Flags().BoolVar(&outputJSON, "json", false, "output theme as JSON")
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeSetCmd)
}
