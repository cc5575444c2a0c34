package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/wethinkt/go-csvview/internal/i18n"
)

// tableKeyMap defines key bindings for the table view.
type tableKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Home   key.Binding
	End    key.Binding
	Quit   key.Binding

	Filter       key.Binding
	GlobalFilter key.Binding
	FilterColumn key.Binding
	Sort         key.Binding
	HideColumn   key.Binding
	ShowColumns  key.Binding

	NewTab      key.Binding
	CloseTab    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	NextDataset key.Binding
	PrevDataset key.Binding

	Info    key.Binding
	CopyRow key.Binding
	CopyAll key.Binding
	Export  key.Binding
	Reload  key.Binding
	Help    key.Binding
}

// inputKeyMap defines key bindings while a filter is being typed.
type inputKeyMap struct {
	Accept key.Binding
	Cancel key.Binding
}

func defaultTableKeyMap() tableKeyMap {
	return tableKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", i18n.T("tui.help.up", "row up")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", i18n.T("tui.help.down", "row down")),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", i18n.T("tui.help.left", "column left")),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", i18n.T("tui.help.right", "column right")),
		),
		PgUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", i18n.T("tui.help.pageUp", "page up")),
		),
		PgDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", i18n.T("tui.help.pageDown", "page down")),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", i18n.T("tui.help.top", "first row")),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", i18n.T("tui.help.bottom", "last row")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("tui.help.quit", "quit")),
		),

		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", i18n.T("tui.help.filter", "filter tab")),
		),
		GlobalFilter: key.NewBinding(
			key.WithKeys("F", "ctrl+f"),
			key.WithHelp("F", i18n.T("tui.help.globalFilter", "filter all tabs")),
		),
		FilterColumn: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", i18n.T("tui.help.filterColumn", "filter this column only")),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", i18n.T("tui.help.sort", "sort asc/desc/off")),
		),
		HideColumn: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", i18n.T("tui.help.hideColumn", "hide column")),
		),
		ShowColumns: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", i18n.T("tui.help.showColumns", "show all columns")),
		),

		NewTab: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", i18n.T("tui.help.newTab", "new tab")),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", i18n.T("tui.help.closeTab", "close tab")),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", i18n.T("tui.help.nextTab", "next tab")),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", i18n.T("tui.help.prevTab", "previous tab")),
		),
		NextDataset: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", i18n.T("tui.help.nextDataset", "next dataset")),
		),
		PrevDataset: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", i18n.T("tui.help.prevDataset", "previous dataset")),
		),

		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", i18n.T("tui.help.info", "column info")),
		),
		CopyRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", i18n.T("tui.help.copyRow", "copy row")),
		),
		CopyAll: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", i18n.T("tui.help.copyAll", "copy view")),
		),
		Export: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", i18n.T("tui.help.export", "write view to csv")),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", i18n.T("tui.help.reload", "reload file")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", i18n.T("tui.help.help", "toggle help")),
		),
	}
}

func defaultInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", i18n.T("tui.help.accept", "apply")),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("tui.help.cancel", "clear filter")),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k tableKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Sort, k.HideColumn, k.NewTab, k.Info, k.Help, k.Quit}
}

// FullHelp returns the bindings shown on the help screen, grouped in columns.
func (k tableKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PgUp, k.PgDown, k.Home, k.End},
		{k.Filter, k.GlobalFilter, k.FilterColumn, k.Sort, k.HideColumn, k.ShowColumns},
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab, k.NextDataset, k.PrevDataset},
		{k.Info, k.CopyRow, k.CopyAll, k.Export, k.Reload, k.Help, k.Quit},
	}
}
