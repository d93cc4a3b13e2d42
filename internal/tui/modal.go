package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/foliops/folio/internal/core/styles"
)

// Modal represents a confirmation dialog.
type Modal struct {
	title           string
	message         string
	visible         bool
	confirmSelected bool
}

// NewModal creates a new modal with the given title and message.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: true,
	}
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Overlay renders the modal centered in the given area, replacing the
// background.
func (m Modal) Overlay(width, height int) string {
	selected := lipgloss.NewStyle().
		Foreground(styles.CurrentPalette.Background).
		Background(styles.CurrentPalette.Primary).
		Padding(0, 2)
	unselected := lipgloss.NewStyle().
		Foreground(styles.CurrentPalette.Muted).
		Padding(0, 2)

	var confirmBtn, cancelBtn string
	if m.confirmSelected {
		confirmBtn = selected.Render("Confirm")
		cancelBtn = unselected.Render("Cancel")
	} else {
		confirmBtn = unselected.Render("Confirm")
		cancelBtn = selected.Render("Cancel")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  esc cancel"),
	)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content),
	)
}
