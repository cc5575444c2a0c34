// Package cmd provides the CLI commands for csvview.
package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/config"
	"github.com/wethinkt/go-csvview/internal/i18n"
	"github.com/wethinkt/go-csvview/internal/tui/theme"
	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// EnvProfile names a file to write a CPU profile to.
const EnvProfile = "CSVVIEW_PROFILE"

// global flags
var (
	profileFile *os.File // held open for profiling
	logPath     string
	verbose     bool
	outputJSON  bool
)

// cfg is loaded once per invocation by the root PersistentPreRunE.
var cfg = config.Default()

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "csvview [files...]",
	Short: "Browse, filter and sort CSV files in the terminal",
	Long: `csvview opens delimited-text files as tabs of an interactive table.

Filtering and sorting run in the background, so the table stays responsive
on large files. Files are reloaded when they change on disk.

Running without a subcommand launches the table view.

Commands:
  stats     Print column statistics for a file
  export    Write the filtered, sorted rows of a file as CSV or Parquet
  serve     Serve files over HTTP or MCP
  config    Show the configuration

Examples:
  csvview sales.csv                  # Open one file
  csvview q1.csv q2.csv              # Open two tabs
  csvview stats sales.csv --json     # Column profiles as JSON`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if CSVVIEW_PROFILE is set
		if profilePath := os.Getenv(EnvProfile); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Stop CPU profiling
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return nil
	},
	SilenceUsage: true,
	RunE:         runTUI,
}

// setup loads the configuration and applies the process-wide settings
// derived from it.
func setup() error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if err := tuilog.InitFromEnv(logPath); err != nil {
		return err
	}
	level := tuilog.ParseLevel(cfg.LogLevel)
	if verbose {
		level = tuilog.LevelDebug
	}
	tuilog.Log.SetLevel(level)

	i18n.Init(i18n.ResolveLocale(cfg.Language))
	if err := theme.Set(cfg.Theme); err != nil {
		tuilog.Log.Warn("Unknown theme, using dark", "theme", cfg.Theme, "error", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write debug log to file")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(languageCmd)
	rootCmd.AddCommand(versionCmd)
}
