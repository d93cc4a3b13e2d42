package tui

import (
	"github.com/charmbracelet/glamour"

	"github.com/foliops/folio/internal/core/styles"
)

const helpMarkdown = `# folio

## Tabs

| key | action |
|---|---|
| tab / ] | next tab |
| shift+tab / [ | previous tab |
| w | close tab |
| o | open document from URL |

## Navigation

| key | action |
|---|---|
| arrows / hjkl | scroll |
| mouse wheel | scroll |
| pgdn / n | next page |
| pgup / p | previous page |
| g | go to page |

## Zoom and layout

| key | action |
|---|---|
| + / - | zoom in / out |
| f | fit page width |
| 0 | zoom 100% |
| d | toggle single / dual page |

## Tools

| key | action |
|---|---|
| 1 / b | browse (drag pans) |
| 2 / v | select text (drag, then choose an action) |
| 3 / m | highlight (drag paints with the active color) |
| 4 / x | erase (click a highlight to remove it) |

## Documents

| key | action |
|---|---|
| s | save |
| S | save as |
| q | quit |
`

// helpView renders the keybinding reference once and caches it.
type helpView struct {
	rendered string
}

func newHelpView() helpView {
	return helpView{}
}

// View renders the help screen for the given width.
func (h *helpView) View(width int) string {
	if h.rendered != "" {
		return h.rendered
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(min(width, 78)),
	)
	if err != nil {
		h.rendered = helpMarkdown
		return h.rendered
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		h.rendered = helpMarkdown
		return h.rendered
	}
	h.rendered = out
	return h.rendered
}
