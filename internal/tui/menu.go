package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/foliops/folio/internal/core/config"
)

const (
	menuChoiceCopy            = "copy"
	menuChoiceHighlightPrefix = "highlight:"
)

// actionMenu is the context menu shown when a selection gesture commits:
// copy the text, or highlight it in one of the palette colors.
type actionMenu struct {
	form   *huh.Form
	choice *string
}

func newActionMenu(palette []config.HighlightColor) *actionMenu {
	choice := new(string)

	opts := make([]huh.Option[string], 0, len(palette)+1)
	opts = append(opts, huh.NewOption("Copy text", menuChoiceCopy))
	for _, h := range palette {
		opts = append(opts, huh.NewOption("Highlight "+h.Name, menuChoiceHighlightPrefix+h.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Selection").
				Options(opts...).
				Value(choice),
		),
	).WithShowHelp(false)

	return &actionMenu{form: form, choice: choice}
}
