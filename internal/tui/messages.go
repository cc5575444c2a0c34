package tui

import (
	"time"

	"github.com/wethinkt/go-csvview/internal/watch"
)

// frameMsg drives Workspace.Poll.
type frameMsg time.Time

// fileChangedMsg is sent when a watched dataset changed on disk.
type fileChangedMsg struct {
	event watch.Event
}

// filterDebounceMsg submits the typed filter if nothing was typed since.
type filterDebounceMsg struct {
	seq int
}

// exportDoneMsg is sent when a view was written to disk.
type exportDoneMsg struct {
	path string
	rows int
	err  error
}

// copyDoneMsg is sent when rows were copied to the clipboard.
type copyDoneMsg struct {
	rows int
	err  error
}
