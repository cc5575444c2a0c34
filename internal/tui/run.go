package tui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/wethinkt/go-csvview/internal/workspace"
)

func termSizeOpts() []tea.ProgramOption {
	var opts []tea.ProgramOption
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				opts = append(opts, tea.WithWindowSize(w, h))
				break
			}
		}
	}
	return opts
}

// Run shows ws in the table view until the user quits.
func Run(ws *workspace.Workspace, opts Options) error {
	p := tea.NewProgram(NewModel(ws, opts), termSizeOpts()...)
	_, err := p.Run()
	return err
}
