package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/window"
)

const (
	minColumnWidth = 3
	maxColumnWidth = 32
	columnGap      = 1
)

// fitWidth truncates s to w cells and pads it with spaces to exactly w.
func fitWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// ansiFit truncates a styled line to width cells.
func ansiFit(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "")
}

// cellText flattens a field to a single line.
func cellText(s string) string {
	if strings.ContainsAny(s, "\r\n\t") {
		s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	}
	return s
}

// columnWidths sizes each of cols from its header and the given rows,
// clamped to [minColumnWidth, maxColumnWidth].
func columnWidths(header []dataset.Column, rows []dataset.Row, cols []int) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		w := ansi.StringWidth(header[c].Name + sortIndicator(header[c]))
		for _, row := range rows {
			if c < len(row) {
				w = max(w, ansi.StringWidth(cellText(row[c])))
			}
		}
		widths[i] = min(max(w, minColumnWidth), maxColumnWidth)
	}
	return widths
}

// layoutColumns returns the first position in cols to draw so that cols[focus]
// fits in width, given the current first position.
func layoutColumns(widths []int, first, focus, width int) int {
	if len(widths) == 0 {
		return 0
	}
	focus = min(max(focus, 0), len(widths)-1)
	first = min(max(first, 0), focus)
	for first < focus {
		used := 0
		for i := first; i <= focus; i++ {
			used += widths[i] + columnGap
		}
		if used <= width {
			break
		}
		first++
	}
	return first
}

// sortIndicator returns the arrow shown after a sorted column's name.
func sortIndicator(col dataset.Column) string {
	if col.Sort == nil {
		return ""
	}
	if *col.Sort == dataset.Descending {
		return " ▼"
	}
	return " ▲"
}

// renderCell fits text into width and highlights occurrences of term.
func renderCell(text, term string, width int, base, match lipgloss.Style) string {
	text = fitWidth(cellText(text), width)
	if term == "" {
		return base.Render(text)
	}
	var b strings.Builder
	for _, seg := range window.Segments(text, term) {
		if seg.Match {
			b.WriteString(match.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	return b.String()
}

// scrollOffset returns the first row to draw so that cursor stays within a
// body of height rows.
func scrollOffset(cursor, offset, height int) int {
	if height <= 0 {
		return cursor
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+height {
		return cursor - height + 1
	}
	return offset
}

// rowAt returns the row drawn at position pos, if the window holds it.
func rowAt(win window.Window, pos int) (dataset.Row, bool) {
	i := pos - win.Offset
	if i < 0 || i >= win.Len() {
		return nil, false
	}
	return win.Rows[i], true
}
