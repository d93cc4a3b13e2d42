package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer keybindings.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	CloseTab key.Binding
	OpenURL  key.Binding

	ZoomIn   key.Binding
	ZoomOut  key.Binding
	ZoomFit  key.Binding
	Zoom100  key.Binding
	DualPage key.Binding

	ScrollUp    key.Binding
	ScrollDown  key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	PageDown    key.Binding
	PageUp      key.Binding
	GotoPage    key.Binding

	ToolBrowse    key.Binding
	ToolSelect    key.Binding
	ToolHighlight key.Binding
	ToolErase     key.Binding

	Save   key.Binding
	SaveAs key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "previous tab")),
		CloseTab: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "close tab")),
		OpenURL:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),

		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomFit:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit width")),
		Zoom100:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "zoom 100%")),
		DualPage: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "single/dual page")),

		ScrollUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		ScrollDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		ScrollLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll left")),
		ScrollRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll right")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "n"), key.WithHelp("pgdn/n", "next page")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "p"), key.WithHelp("pgup/p", "previous page")),
		GotoPage:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),

		ToolBrowse:    key.NewBinding(key.WithKeys("1", "b"), key.WithHelp("1", "browse tool")),
		ToolSelect:    key.NewBinding(key.WithKeys("2", "v"), key.WithHelp("2", "select tool")),
		ToolHighlight: key.NewBinding(key.WithKeys("3", "m"), key.WithHelp("3", "highlight tool")),
		ToolErase:     key.NewBinding(key.WithKeys("4", "x"), key.WithHelp("4", "erase tool")),

		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		SaveAs: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "save as")),
	}
}
