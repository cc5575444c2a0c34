package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/config"
	"github.com/wethinkt/go-csvview/internal/i18n"
)

var languageCmd = &cobra.Command{
	Use:   "language [lang]",
	Short: "Get or set the display language",
	Long: `Get or set the display language. Use a BCP 47 tag (e.g., en, de).

CSVVIEW_LANG overrides the configured language.

Examples:
  csvview language      # show current language
  csvview language de   # switch to German`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintf(out, "Current language: %s\n", i18n.ResolveLocale(cfg.Language))
			for _, tag := range i18n.Available() {
				fmt.Fprintf(out, "  %s\n", tag)
			}
			return nil
		}

		cfg.Language = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Language set to: %s\n", args[0])
		return nil
	},
}
