package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-csvview/internal/tui"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/watch"
	"github.com/wethinkt/go-csvview/internal/workspace"
)

func runTUI(cmd *cobra.Command, args []string) error {
	tuilog.Log.Info("Starting csvview", "files", len(args))
	ws := workspace.New(workspaceOptions(cfg))
	defer ws.Close()

	opts := tui.Options{
		Paths:          args,
		FrameInterval:  cfg.View.FrameDuration(),
		FilterDebounce: cfg.View.DebounceDuration(),
	}

	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Watch.DebounceDuration())
		if err != nil {
			tuilog.Log.Warn("File watching disabled", "error", err)
		} else {
			defer w.Stop()
			opts.Watcher = w
			opts.Events = w.Start(cmd.Context())
		}
	}

	return tui.Run(ws, opts)
}
