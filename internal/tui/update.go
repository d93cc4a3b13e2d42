package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/fetch"
	"github.com/foliops/folio/internal/viewer"
	"github.com/foliops/folio/internal/viewer/layout"
)

var keys = DefaultKeyMap()

// scrollStep is how far one arrow key press moves, in canvas units.
const scrollStep = 6.0

// wheelStep is how far one wheel notch moves, in canvas units.
const wheelStep = 6.0

type fetchDoneMsg struct {
	doc fetch.Document
	err error
}

type preExtractDoneMsg struct {
	label string
	gen   uint64
	tab   *viewer.Tab
	err   error
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw, vh := m.canvasUnits()
		for _, t := range m.tabs {
			t.SetViewport(vw, vh)
		}
		return m, nil

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case spinner.TickMsg:
		if m.state != stateFetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchDoneMsg:
		return m.handleFetchDone(msg)

	case preExtractDoneMsg:
		if msg.tab.Expired(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("doc", msg.label).Msg("quad pre-extraction failed")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.state == stateMenu && m.menu != nil {
		return m, m.updateMenu(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateInput:
		return m.handleInputKey(msg)
	case stateConfirming:
		return m.handleConfirmKey(msg)
	case stateMenu:
		return m, m.updateMenu(msg)
	case stateShowingHelp:
		if msg.String() == "esc" || msg.String() == "q" || key.Matches(msg, keys.Help) {
			m.state = stateNormal
		}
		return m, nil
	case stateFetching:
		if msg.String() == "esc" && m.fetchCancel != nil {
			m.fetchCancel()
		}
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.Tab()

	switch {
	case key.Matches(msg, keys.Quit):
		if m.anyModified() {
			m.confirmWhat = confirmQuit
			m.modal = NewModal("Quit", "Unsaved changes will be lost. Quit anyway?")
			m.state = stateConfirming
			return m, nil
		}
		m.quitting = true
		m.closeAll()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.state = stateShowingHelp
		return m, nil

	case key.Matches(msg, keys.OpenURL):
		return m, m.openInput(inputOpenURL, "Open URL", "https://")

	case key.Matches(msg, keys.NextTab):
		if len(m.tabs) > 1 {
			m.active = (m.active + 1) % len(m.tabs)
		}
		return m, nil

	case key.Matches(msg, keys.PrevTab):
		if len(m.tabs) > 1 {
			m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
		}
		return m, nil

	case key.Matches(msg, keys.CloseTab):
		if tab == nil {
			return m, nil
		}
		if tab.Modified() {
			m.confirmWhat = confirmCloseTab
			m.pendingClose = m.active
			m.modal = NewModal("Close Tab", "This document has unsaved changes. Close anyway?")
			m.state = stateConfirming
			return m, nil
		}
		m.closeTab(m.active)
		return m, nil
	}

	if tab == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.ZoomIn):
		tab.ZoomIn()
	case key.Matches(msg, keys.ZoomOut):
		tab.ZoomOut()
	case key.Matches(msg, keys.ZoomFit):
		tab.FitWidth()
	case key.Matches(msg, keys.Zoom100):
		tab.SetScale(1.0)
	case key.Matches(msg, keys.DualPage):
		if tab.ViewMode() == layout.Single {
			tab.SetViewMode(layout.Dual)
		} else {
			tab.SetViewMode(layout.Single)
		}

	case key.Matches(msg, keys.ScrollUp):
		tab.ScrollBy(0, -scrollStep)
	case key.Matches(msg, keys.ScrollDown):
		tab.ScrollBy(0, scrollStep)
	case key.Matches(msg, keys.ScrollLeft):
		tab.ScrollBy(-scrollStep, 0)
	case key.Matches(msg, keys.ScrollRight):
		tab.ScrollBy(scrollStep, 0)

	case key.Matches(msg, keys.PageDown):
		if idx := tab.CurrentPage(); idx >= 0 && idx+1 < tab.PageCount() {
			_ = tab.GoToPage(idx + 1)
		}
	case key.Matches(msg, keys.PageUp):
		if idx := tab.CurrentPage(); idx > 0 {
			_ = tab.GoToPage(idx - 1)
		}
	case key.Matches(msg, keys.GotoPage):
		return m, m.openInput(inputGotoPage, "Go to page", "")

	case key.Matches(msg, keys.ToolBrowse):
		tab.SetTool(viewer.Browse)
	case key.Matches(msg, keys.ToolSelect):
		tab.SetTool(viewer.Select)
	case key.Matches(msg, keys.ToolHighlight):
		tab.SetTool(viewer.Highlight)
	case key.Matches(msg, keys.ToolErase):
		tab.SetTool(viewer.Erase)

	case key.Matches(msg, keys.Save):
		if err := tab.Save(); err != nil {
			return m, m.toastError("save failed: %v", err)
		}
		return m, m.toastInfo("saved %s", tab.Path())
	case key.Matches(msg, keys.SaveAs):
		return m, m.openInput(inputSaveAs, "Save as", tab.Path())
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	tab := m.Tab()
	if m.state != stateNormal || tab == nil {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		tab.ScrollBy(0, -wheelStep)
		return m, nil
	case tea.MouseButtonWheelDown:
		tab.ScrollBy(0, wheelStep)
		return m, nil
	case tea.MouseButtonWheelLeft:
		tab.ScrollBy(-wheelStep, 0)
		return m, nil
	case tea.MouseButtonWheelRight:
		tab.ScrollBy(wheelStep, 0)
		return m, nil
	}

	if msg.Y < canvasTopRow || msg.Y >= m.height-1 {
		return m, nil
	}
	x, y := m.toViewport(msg.X, msg.Y)
	pt := geom.Point{X: x, Y: y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			tab.PointerPress(pt)
		}
	case tea.MouseActionMotion:
		tab.PointerMove(pt)
	case tea.MouseActionRelease:
		g := tab.PointerRelease(pt)
		switch {
		case g.Highlighted:
			return m, m.toastInfo("highlight added on page %d", g.Selection.PageIndex+1)
		case g.Selection.Committed:
			m.selection = g.Selection
			m.menu = newActionMenu(m.cfg.Highlights)
			m.state = stateMenu
			return m, m.menu.form.Init()
		}
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateNormal
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.state = stateNormal
		return m.submitInput(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitInput(value string) (tea.Model, tea.Cmd) {
	tab := m.Tab()
	if value == "" {
		return m, nil
	}

	switch m.inputFor {
	case inputGotoPage:
		if tab == nil {
			return m, nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || tab.GoToPage(n-1) != nil {
			return m, m.toastError("no page %q", value)
		}
		return m, nil

	case inputOpenURL:
		m.state = stateFetching
		return m, tea.Batch(m.fetchCmd(value), m.spinner.Tick)

	case inputSaveAs:
		if tab == nil {
			return m, nil
		}
		if err := tab.SaveAs(value); err != nil {
			return m, m.toastError("save failed: %v", err)
		}
		return m, m.toastInfo("saved %s", value)
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab":
		m.modal.ToggleSelection()
		return m, nil
	case "esc":
		m.state = stateNormal
		return m, nil
	case "enter":
		m.state = stateNormal
		if !m.modal.ConfirmSelected() {
			return m, nil
		}
		switch m.confirmWhat {
		case confirmCloseTab:
			m.closeTab(m.pendingClose)
		case confirmQuit:
			m.quitting = true
			m.closeAll()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.Msg) tea.Cmd {
	form, cmd := m.menu.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.menu.form = f
	}

	switch m.menu.form.State {
	case huh.StateCompleted:
		m.state = stateNormal
		return m.applyMenuChoice(*m.menu.choice)
	case huh.StateAborted:
		m.state = stateNormal
		return nil
	}
	return cmd
}

func (m *Model) applyMenuChoice(choice string) tea.Cmd {
	tab := m.Tab()
	if tab == nil {
		return nil
	}

	if choice == menuChoiceCopy {
		text := m.selection.Text()
		if text == "" {
			return m.toastInfo("selection has no text")
		}
		if err := clipboard.WriteAll(text); err != nil {
			return m.toastError("clipboard: %v", err)
		}
		return m.toastInfo("copied %d characters", len(text))
	}

	if name, ok := strings.CutPrefix(choice, menuChoiceHighlightPrefix); ok {
		h, ok := m.cfg.HighlightByName(name)
		if !ok {
			return m.toastError("unknown highlight color %q", name)
		}
		rgb, err := h.RGB()
		if err != nil {
			return m.toastError("highlight color: %v", err)
		}
		if _, err := tab.CommitHighlight(m.selection, rgb); err != nil {
			return m.toastError("highlight failed: %v", err)
		}
		return m.toastInfo("highlighted in %s", name)
	}
	return nil
}

func (m *Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	if m.state == stateFetching {
		m.state = stateNormal
	}
	m.fetchCancel = nil

	if msg.err != nil {
		return m, m.toastError("fetch failed: %v", msg.err)
	}
	doc, err := m.opener.OpenBytes(msg.doc.Data, msg.doc.Label)
	if err != nil {
		return m, m.toastError("open %s: %v", msg.doc.Label, err)
	}
	m.AddTab(doc, "")
	return m, tea.Batch(
		m.toastInfo("opened %s", msg.doc.Label),
		preExtractCmd(m.Tab()),
	)
}

func (m *Model) openInput(purpose inputPurpose, title, initial string) tea.Cmd {
	m.inputFor = purpose
	m.inputTitle = title
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.state = stateInput
	return m.input.Focus()
}

func (m *Model) fetchCmd(url string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.fetchCancel = cancel
	client := m.fetch
	return func() tea.Msg {
		doc, err := client.Fetch(ctx, url)
		return fetchDoneMsg{doc: doc, err: err}
	}
}

// preExtractCmd warms a tab's text quads in the background. The result is
// dropped if the tab was closed in the meantime.
func preExtractCmd(tab *viewer.Tab) tea.Cmd {
	gen := tab.Generation()
	return func() tea.Msg {
		err := tab.PreExtract(context.Background())
		return preExtractDoneMsg{label: tab.Label(), gen: gen, tab: tab, err: err}
	}
}

func (m *Model) anyModified() bool {
	for _, t := range m.tabs {
		if t.Modified() {
			return true
		}
	}
	return false
}
