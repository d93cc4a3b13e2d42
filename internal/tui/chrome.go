package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/foliops/folio/internal/core/styles"
)

// renderTabBar draws one row of tab titles, active tab emphasized,
// truncated to the terminal width.
func (m *Model) renderTabBar() string {
	if len(m.tabs) == 0 {
		return styles.TabInactiveStyle.Render("folio — no document")
	}

	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		style := styles.TabInactiveStyle
		if i == m.active {
			style = styles.TabActiveStyle
		}
		parts = append(parts, style.Render(tabTitle(t)))
	}

	bar := strings.Join(parts, " ")
	return ansi.Truncate(bar, m.width, "…")
}

// renderStatusBar draws the bottom row: page indicator, zoom, view mode,
// and active tool.
func (m *Model) renderStatusBar() string {
	tab := m.Tab()
	if tab == nil {
		return styles.StatusBarStyle.Width(m.width).Render(" o open url   q quit   ? help")
	}

	left := fmt.Sprintf(" %s  %s %s  %s %s  %s %s",
		styles.StatusValueStyle.Render(tab.PageLabel()),
		styles.StatusLabelStyle.Render("zoom"),
		styles.StatusValueStyle.Render(fmt.Sprintf("%d%%", int(tab.Scale()*100+0.5))),
		styles.StatusLabelStyle.Render("view"),
		styles.StatusValueStyle.Render(tab.ViewMode().String()),
		styles.StatusLabelStyle.Render("tool"),
		styles.StatusValueStyle.Render(tab.Tool().String()),
	)

	right := styles.StatusLabelStyle.Render("? help ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return styles.StatusBarStyle.Width(m.width).Render(ansi.Truncate(left, m.width, "…"))
	}
	filler := styles.StatusBarStyle.Render(strings.Repeat(" ", gap))
	return left + filler + right
}
