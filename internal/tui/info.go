package tui

import (
	"fmt"
	"strings"

	"github.com/wethinkt/go-csvview/internal/i18n"
	"github.com/wethinkt/go-csvview/internal/profile"
)

const infoPanelWidth = 34

// renderInfo renders the profile of one column, or a placeholder while
// profiles are being computed.
func renderInfo(cols []profile.Column, ok bool, col, height int) string {
	s := GetStyles()
	inner := infoPanelWidth - 4

	var lines []string
	switch {
	case !ok:
		lines = append(lines, s.Muted.Render(i18n.T("tui.info.pending", "Profiling columns...")))
	case col < 0 || col >= len(cols):
		lines = append(lines, s.Muted.Render(i18n.T("tui.info.noColumn", "No column selected")))
	default:
		c := cols[col]
		lines = append(lines,
			s.PanelTitle.Render(fitWidth(c.Name, inner)),
			"",
			infoLine(i18n.T("tui.info.type", "Type"), string(c.Type), inner),
			infoLine(i18n.T("tui.info.distinct", "Distinct"), fmt.Sprint(c.UniqueCount), inner),
			infoLine(i18n.T("tui.info.empty", "Empty"), fmt.Sprint(c.Empty), inner),
		)
		if c.Min != "" || c.Max != "" {
			lines = append(lines,
				infoLine(i18n.T("tui.info.min", "Min"), c.Min, inner),
				infoLine(i18n.T("tui.info.max", "Max"), c.Max, inner),
			)
		}
		if len(c.Unique) > 0 {
			lines = append(lines, "", s.Help.Render(i18n.T("tui.info.values", "Values")))
			for _, v := range c.Unique {
				lines = append(lines, "  "+fitWidth(cellText(v), inner-2))
			}
			if c.Truncated {
				lines = append(lines, s.Muted.Render("  …"))
			}
		}
	}

	if height > 2 && len(lines) > height-2 {
		lines = lines[:height-2]
	}
	return s.Panel.Width(infoPanelWidth).Render(strings.Join(lines, "\n"))
}

func infoLine(label, value string, width int) string {
	s := GetStyles()
	const labelWidth = 10
	return s.Help.Render(fitWidth(label, labelWidth)) + fitWidth(value, width-labelWidth)
}
