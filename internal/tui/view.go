package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/foliops/folio/internal/core/styles"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	switch m.state {
	case stateShowingHelp:
		return m.help.View(m.width)

	case stateConfirming:
		return m.modal.Overlay(m.width, m.height)

	case stateMenu:
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			styles.ModalStyle.Render(m.menu.form.View()),
		)

	case stateInput:
		content := lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ModalTitleStyle.Render(m.inputTitle),
			"",
			m.input.View(),
			styles.ModalHelpStyle.Render("enter confirm  esc cancel"),
		)
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			styles.ModalStyle.Render(content),
		)

	case stateFetching:
		content := m.spinner.View() + " fetching document... (esc to cancel)"
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			content,
		)
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteByte('\n')
	b.WriteString(m.renderCanvas())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusBar())

	return overlayToasts(b.String(), m.toasts.View(), m.width)
}
