package tui

import (
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-csvview/internal/tui/theme"
)

// Styles holds all the computed lipgloss styles for the TUI.
type Styles struct {
	Header       lipgloss.Style
	HeaderSorted lipgloss.Style
	HeaderFilter lipgloss.Style
	Cell         lipgloss.Style
	CellAlt      lipgloss.Style
	RowSelected  lipgloss.Style
	Match        lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Badge       lipgloss.Style
	Muted       lipgloss.Style
	Help        lipgloss.Style

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	Prompt     lipgloss.Style
}

var (
	stylesMu sync.Mutex
	styles   *Styles
)

// GetStyles returns the current styles, building them from the theme on
// first use.
func GetStyles() *Styles {
	stylesMu.Lock()
	defer stylesMu.Unlock()
	if styles == nil {
		s := buildStyles(theme.Current())
		styles = &s
	}
	return styles
}

// ReloadStyles rebuilds styles from the current theme.
func ReloadStyles() *Styles {
	s := buildStyles(theme.Current())
	stylesMu.Lock()
	styles = &s
	stylesMu.Unlock()
	return &s
}

// applyStyle applies a theme.Style to a lipgloss.Style builder.
func applyStyle(s lipgloss.Style, ts theme.Style) lipgloss.Style {
	if ts.Fg != "" {
		s = s.Foreground(lipgloss.Color(ts.Fg))
	}
	if ts.Bg != "" {
		s = s.Background(lipgloss.Color(ts.Bg))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Underline {
		s = s.Underline(true)
	}
	return s
}

func buildStyles(t theme.Theme) Styles {
	return Styles{
		Header:       applyStyle(lipgloss.NewStyle(), t.Header),
		HeaderSorted: applyStyle(lipgloss.NewStyle(), t.HeaderSorted),
		HeaderFilter: applyStyle(lipgloss.NewStyle(), t.HeaderFilter),
		Cell:         applyStyle(lipgloss.NewStyle(), t.Cell),
		CellAlt:      applyStyle(lipgloss.NewStyle(), t.CellAlt),
		RowSelected:  applyStyle(lipgloss.NewStyle(), t.RowSelected),
		Match:        applyStyle(lipgloss.NewStyle(), t.Match),

		TabActive:   applyStyle(lipgloss.NewStyle(), t.TabActive).Padding(0, 1),
		TabInactive: applyStyle(lipgloss.NewStyle(), t.TabInactive).Padding(0, 1),
		StatusBar:   applyStyle(lipgloss.NewStyle(), t.StatusBar),
		StatusError: applyStyle(lipgloss.NewStyle(), t.StatusError),
		Badge:       applyStyle(lipgloss.NewStyle(), t.Badge).Padding(0, 1),
		Muted:       applyStyle(lipgloss.NewStyle(), t.TextMuted),
		Help:        applyStyle(lipgloss.NewStyle(), t.TextSecondary),

		Panel: applyStyle(lipgloss.NewStyle(), t.Panel).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.GetBorderActive())).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.GetAccent())),
		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.GetAccent())),
	}
}
