package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/foliops/folio/internal/core/styles"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 44
)

type toastLevel int

const (
	toastLevelInfo toastLevel = iota
	toastLevelError
)

type toast struct {
	level     toastLevel
	message   string
	remaining time.Duration
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastController manages the lifecycle of active toast notifications.
// It handles push, eviction, TTL countdown, and dismissal.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a toast to the stack. If the stack exceeds defaultMaxToasts,
// the oldest toast is evicted.
func (c *ToastController) Push(t toast) {
	c.toasts = append(c.toasts, t)
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes any
// that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest (bottom-most) toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// HasToasts returns true if there are any active toasts.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the current active toast slice.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking returns whether the tick timer is currently running.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}

// View renders the toast stack, oldest at top, newest at bottom.
func (c *ToastController) View() string {
	if len(c.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		style := styles.ToastInfoStyle
		if t.level == toastLevelError {
			style = styles.ToastErrorStyle
		}
		rendered = append(rendered, style.MaxWidth(toastWidth).Render(t.message))
	}
	return strings.Join(rendered, "\n")
}

// overlayToasts pastes the toast stack into the lower-right corner of the
// rendered frame, replacing the lines it covers.
func overlayToasts(frame string, toasts string, width int) string {
	if toasts == "" {
		return frame
	}
	frameLines := strings.Split(frame, "\n")
	toastLines := strings.Split(toasts, "\n")
	if len(toastLines) >= len(frameLines) {
		return frame
	}

	start := len(frameLines) - len(toastLines) - 1
	for i, tl := range toastLines {
		w := lipgloss.Width(tl)
		pad := max(width-w-1, 0)
		left := ansi.Truncate(frameLines[start+i], pad, "")
		if short := pad - lipgloss.Width(left); short > 0 {
			left += strings.Repeat(" ", short)
		}
		frameLines[start+i] = left + tl
	}
	return strings.Join(frameLines, "\n")
}
