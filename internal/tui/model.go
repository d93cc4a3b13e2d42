// Package tui implements the interactive viewer shell. The shell is thin
// glue: it owns the Bubble Tea event loop, translates key and mouse input
// into calls on the active tab controller, and paints the result. All
// document semantics live in internal/viewer and below.
package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/foliops/folio/internal/core/config"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/fetch"
	"github.com/foliops/folio/internal/viewer"
	"github.com/foliops/folio/internal/viewer/selection"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateInput
	stateConfirming
	stateMenu
	stateShowingHelp
	stateFetching
)

// inputPurpose says what the text input dialog collects.
type inputPurpose int

const (
	inputGotoPage inputPurpose = iota
	inputOpenURL
	inputSaveAs
)

// confirmAction says what a confirmed modal does.
type confirmAction int

const (
	confirmCloseTab confirmAction = iota
	confirmQuit
)

// Opener turns paths or fetched bytes into documents. The engine adapter
// satisfies it; tests substitute fakes.
type Opener struct {
	OpenPath  func(path string) (engine.Document, error)
	OpenBytes func(data []byte, label string) (engine.Document, error)
}

// Options configures the TUI behavior.
type Options struct {
	Config  *config.Config
	Log     zerolog.Logger
	Opener  Opener
	Fetcher *fetch.Client
}

// Model is the main Bubble Tea model for the viewer.
type Model struct {
	cfg    *config.Config
	log    zerolog.Logger
	opener Opener
	fetch  *fetch.Client

	tabs   []*viewer.Tab
	active int

	state   UIState
	width   int
	height  int
	density float64

	// Input dialog
	input        textinput.Model
	inputFor     inputPurpose
	inputTitle   string
	confirmWhat  confirmAction
	modal        Modal
	pendingClose int

	// Selection action menu
	menu      *actionMenu
	selection selection.Result

	// Remote fetch
	spinner     spinner.Model
	fetchCancel context.CancelFunc

	toasts *ToastController
	help   helpView

	quitting bool
}

// New creates the shell model. Documents are opened by the caller and
// attached through AddTab before Run.
func New(opts Options) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 512

	return &Model{
		cfg:     opts.Config,
		log:     opts.Log.With().Str("component", "tui").Logger(),
		opener:  opts.Opener,
		fetch:   opts.Fetcher,
		density: opts.Config.Render.Density,
		input:   ti,
		spinner: sp,
		toasts:  NewToastController(),
		help:    newHelpView(),
	}
}

// AddTab attaches an open document as the rightmost tab and activates it.
func (m *Model) AddTab(doc engine.Document, path string) {
	tab := viewer.NewTab(doc, path, m.log)
	tab.SetZoomStep(m.cfg.ZoomStep)
	if c, ok := m.cfg.HighlightByName(m.cfg.Highlights[0].Name); ok {
		if rgb, err := c.RGB(); err == nil {
			tab.SetHighlightColor(rgb)
		}
	}
	if m.width > 0 {
		vw, vh := m.canvasUnits()
		tab.SetViewport(vw, vh)
	}
	m.tabs = append(m.tabs, tab)
	m.active = len(m.tabs) - 1
}

// Tab returns the active tab, or nil when no document is open.
func (m *Model) Tab() *viewer.Tab {
	if m.active < 0 || m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// canvasUnits is the canvas viewport size in canvas units. One terminal
// cell is one unit wide and, with half blocks, two units tall. The tab
// bar and status bar each take one row.
func (m *Model) canvasUnits() (w, h float64) {
	rows := max(m.height-2, 0)
	return float64(m.width), float64(rows * 2)
}

// canvasTopRow is the first terminal row of the page canvas.
const canvasTopRow = 1

// toViewport converts a terminal mouse position to canvas-unit viewport
// coordinates, centered on the cell.
func (m *Model) toViewport(x, y int) (float64, float64) {
	return float64(x) + 0.5, float64((y-canvasTopRow)*2) + 1
}

func (m *Model) closeTab(i int) {
	if i < 0 || i >= len(m.tabs) {
		return
	}
	if err := m.tabs[i].Close(); err != nil {
		m.log.Error().Err(err).Str("doc", m.tabs[i].Label()).Msg("close failed")
	}
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	if m.active >= len(m.tabs) {
		m.active = len(m.tabs) - 1
	}
}

func (m *Model) closeAll() {
	for _, t := range m.tabs {
		if err := t.Close(); err != nil {
			m.log.Error().Err(err).Str("doc", t.Label()).Msg("close failed")
		}
	}
	m.tabs = nil
	m.active = -1
}

func (m *Model) toastInfo(format string, args ...any) tea.Cmd {
	m.toasts.Push(toast{level: toastLevelInfo, message: fmt.Sprintf(format, args...), remaining: defaultToastTTL})
	return m.ensureToastTick()
}

func (m *Model) toastError(format string, args ...any) tea.Cmd {
	m.toasts.Push(toast{level: toastLevelError, message: fmt.Sprintf(format, args...), remaining: defaultToastTTL})
	return m.ensureToastTick()
}

func (m *Model) ensureToastTick() tea.Cmd {
	if m.toasts.Ticking() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

func tabTitle(t *viewer.Tab) string {
	name := filepath.Base(t.Label())
	if t.Modified() {
		name += " *"
	}
	return name
}

// Run starts the program in the alternate screen with full mouse
// reporting, which selection dragging needs.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
