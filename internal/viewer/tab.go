// Package viewer holds the per-tab controller tying a document to its
// layout, render cache, and selection state. Everything here is
// toolkit-agnostic; the terminal shell translates input events into calls
// on a Tab and paints from its accessors.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/viewer/layout"
	"github.com/foliops/folio/internal/viewer/render"
	"github.com/foliops/folio/internal/viewer/selection"
)

// Scale limits and the default zoom increment.
const (
	MinScale        = 0.2
	MaxScale        = 5.0
	DefaultZoomStep = 0.2

	// fitWidthMargin is subtracted from the viewport width before fitting
	// the first page, leaving room at the edges.
	fitWidthMargin = 20.0

	// preExtractWorkers bounds the background quad warm-up.
	preExtractWorkers = 2
)

// ErrNoFilePath is returned by Save for documents opened without a local
// path (remote fetches), which must be saved with an explicit target.
var ErrNoFilePath = errors.New("document has no file path")

// ToolMode is the active pointer tool.
type ToolMode int

const (
	// Browse pans the canvas on drag.
	Browse ToolMode = iota
	// Select runs the selection gesture and offers actions on release.
	Select
	// Highlight runs the selection gesture and commits an annotation on
	// release.
	Highlight
	// Erase removes the highlight under the pointer on press. Drag does
	// nothing in this mode.
	Erase
)

func (m ToolMode) String() string {
	switch m {
	case Select:
		return "select"
	case Highlight:
		return "highlight"
	case Erase:
		return "erase"
	default:
		return "browse"
	}
}

// Gesture is the outcome of a pointer release, for the shell to act on.
type Gesture struct {
	// Selection is the committed selection, set in Select mode. The shell
	// presents the action menu for it.
	Selection selection.Result

	// Highlighted is set when Highlight mode committed an annotation.
	Highlighted bool
	Annotation  engine.Annotation
}

// Tab is the controller for one open document. All methods run on the
// event loop goroutine; the only concurrent entry point is PreExtract,
// which touches the document through its own internal locking.
type Tab struct {
	doc  engine.Document
	path string // empty for remote documents
	log  zerolog.Logger

	cache *render.Cache
	sel   *selection.Mapper

	gen    uint64
	closed bool

	sizes []geom.Rect
	view  layout.Result

	scale    float64
	zoomStep float64
	mode     layout.Mode
	tool     ToolMode
	color    engine.RGB

	viewportW float64
	viewportH float64
	scroll    geom.Point

	panning bool
	panLast geom.Point
}

// NewTab wraps an open document. path is the local file the document was
// read from, or empty for remote sources.
func NewTab(doc engine.Document, path string, log zerolog.Logger) *Tab {
	t := &Tab{
		doc:      doc,
		path:     path,
		log:      log.With().Str("component", "tab").Str("doc", doc.Label()).Logger(),
		cache:    render.NewCache(doc, log),
		sel:      selection.NewMapper(doc, log),
		scale:    1.0,
		zoomStep: DefaultZoomStep,
		color:    engine.RGB{R: 1, G: 1, B: 0},
	}

	t.sizes = make([]geom.Rect, doc.PageCount())
	for i := range t.sizes {
		p, err := doc.Page(i)
		if err != nil {
			t.log.Error().Err(err).Int("page", i).Msg("page lookup failed, using empty size")
			continue
		}
		t.sizes[i] = p.Size()
	}
	return t
}

func (t *Tab) Doc() engine.Document  { return t.doc }
func (t *Tab) Label() string         { return t.doc.Label() }
func (t *Tab) Path() string          { return t.path }
func (t *Tab) Modified() bool        { return t.doc.Modified() }
func (t *Tab) PageCount() int        { return len(t.sizes) }
func (t *Tab) Scale() float64        { return t.scale }
func (t *Tab) ViewMode() layout.Mode { return t.mode }
func (t *Tab) Tool() ToolMode        { return t.tool }
func (t *Tab) View() layout.Result   { return t.view }
func (t *Tab) Scroll() geom.Point    { return t.scroll }
func (t *Tab) Cache() *render.Cache  { return t.cache }

// SetZoomStep overrides the configured zoom increment. Non-positive values
// are ignored.
func (t *Tab) SetZoomStep(step float64) {
	if step > 0 {
		t.zoomStep = step
	}
}

// SetHighlightColor sets the color used when Highlight mode commits.
func (t *Tab) SetHighlightColor(c engine.RGB) { t.color = c }

// HighlightColor returns the active highlight color.
func (t *Tab) HighlightColor() engine.RGB { return t.color }

// SetViewport installs the visible area size in canvas units and
// recomputes the layout, since single-mode centering depends on it.
func (t *Tab) SetViewport(w, h float64) {
	t.viewportW = w
	t.viewportH = h
	t.relayout()
}

// SetScale zooms to the given factor, clamped to [MinScale, MaxScale].
// Bitmaps for the old factor are dropped.
func (t *Tab) SetScale(s float64) {
	s = min(max(s, MinScale), MaxScale)
	if s == t.scale {
		return
	}
	t.scale = s
	t.cache.InvalidateAll()
	t.relayout()
}

// ZoomIn raises the scale by one step.
func (t *Tab) ZoomIn() { t.SetScale(t.scale + t.zoomStep) }

// ZoomOut lowers the scale by one step.
func (t *Tab) ZoomOut() { t.SetScale(t.scale - t.zoomStep) }

// FitWidth scales so the first page spans the viewport width minus a
// margin. No-op for empty documents or degenerate viewports.
func (t *Tab) FitWidth() {
	if len(t.sizes) == 0 || t.viewportW <= fitWidthMargin {
		return
	}
	w := t.sizes[0].Width()
	if w <= 0 {
		return
	}
	t.SetScale((t.viewportW - fitWidthMargin) / w)
}

// SetViewMode switches between single and dual page layout.
func (t *Tab) SetViewMode(m layout.Mode) {
	if m == t.mode {
		return
	}
	t.mode = m
	t.cache.InvalidateAll()
	t.relayout()
}

// SetTool switches the pointer tool. Entering Browse abandons any
// selection in progress.
func (t *Tab) SetTool(m ToolMode) {
	if m == t.tool {
		return
	}
	t.tool = m
	t.panning = false
	if m == Browse {
		t.sel.Reset()
	}
}

// CurrentPage returns the zero-based index of the first page straddling
// the vertical center of the viewport, or -1 when no page does.
func (t *Tab) CurrentPage() int {
	return t.view.CurrentPage(t.scroll.Y + t.viewportH/2)
}

// PageLabel renders the status-bar page indicator.
func (t *Tab) PageLabel() string {
	idx := t.CurrentPage()
	if idx < 0 {
		return fmt.Sprintf("- / %d", len(t.sizes))
	}
	return fmt.Sprintf("%d / %d", idx+1, len(t.sizes))
}

// ScrollBy moves the viewport, clamped to the canvas bounds.
func (t *Tab) ScrollBy(dx, dy float64) {
	t.scroll.X += dx
	t.scroll.Y += dy
	t.clampScroll()
}

// GoToPage scrolls so the top of the zero-based page index is at the top
// of the viewport.
func (t *Tab) GoToPage(index int) error {
	if index < 0 || index >= len(t.view.Pages) {
		return engine.ErrPageOutOfRange
	}
	t.scroll.Y = t.view.Pages[index].Offset.Y
	t.clampScroll()
	return nil
}

// PointerPress handles a press at viewport coordinates.
func (t *Tab) PointerPress(pt geom.Point) {
	switch t.tool {
	case Browse:
		t.panning = true
		t.panLast = pt
	case Select, Highlight:
		t.sel.Press(t.toCanvas(pt))
	case Erase:
		if err := t.eraseAt(t.toCanvas(pt)); err != nil {
			t.log.Error().Err(err).Msg("erase failed")
		}
	}
}

// PointerMove handles pointer motion at viewport coordinates.
func (t *Tab) PointerMove(pt geom.Point) {
	switch t.tool {
	case Browse:
		if t.panning {
			t.ScrollBy(t.panLast.X-pt.X, t.panLast.Y-pt.Y)
			t.panLast = pt
		}
	case Select, Highlight:
		t.sel.Move(t.toCanvas(pt))
	}
}

// PointerRelease handles a release at viewport coordinates and reports
// what the gesture produced.
func (t *Tab) PointerRelease(pt geom.Point) Gesture {
	switch t.tool {
	case Browse:
		t.panning = false
	case Select:
		res := t.sel.Release(t.toCanvas(pt))
		if res.Committed {
			return Gesture{Selection: res}
		}
	case Highlight:
		res := t.sel.Release(t.toCanvas(pt))
		if !res.Committed {
			break
		}
		a, err := t.CommitHighlight(res, t.color)
		if err != nil {
			t.log.Error().Err(err).Int("page", res.PageIndex).Msg("highlight failed")
			break
		}
		return Gesture{Selection: res, Highlighted: true, Annotation: a}
	}
	return Gesture{}
}

// SelectionOverlay returns the in-progress selection outline in viewport
// coordinates.
func (t *Tab) SelectionOverlay() []geom.Quad {
	quads := t.sel.Overlay()
	if len(quads) == 0 {
		return nil
	}
	out := make([]geom.Quad, 0, len(quads))
	neg := geom.Point{X: -t.scroll.X, Y: -t.scroll.Y}
	for _, q := range quads {
		out = append(out, q.Transform(1, neg))
	}
	return out
}

// CommitHighlight writes a highlight annotation for a committed selection
// and drops the page's bitmap so the next render shows it.
func (t *Tab) CommitHighlight(res selection.Result, color engine.RGB) (engine.Annotation, error) {
	page, err := t.doc.Page(res.PageIndex)
	if err != nil {
		return engine.Annotation{}, fmt.Errorf("commit highlight: %w", err)
	}
	quads := make([]geom.Quad, 0, len(res.Quads))
	for _, q := range res.Quads {
		quads = append(quads, q.Quad)
	}
	a, err := page.AddHighlight(quads, res.Rect, color)
	if err != nil {
		return engine.Annotation{}, fmt.Errorf("commit highlight: %w", err)
	}
	t.cache.Invalidate(res.PageIndex)
	return a, nil
}

// eraseAt removes the first highlight whose rectangle contains the canvas
// point. Pressing where no highlight is, or where one was already
// removed, does nothing.
func (t *Tab) eraseAt(pt geom.Point) error {
	place, ok := t.view.PageAt(pt)
	if !ok {
		return nil
	}
	page, err := t.doc.Page(place.Index)
	if err != nil {
		return err
	}
	annots, err := page.Annotations()
	if err != nil {
		return err
	}
	local := geom.Point{
		X: (pt.X - place.Offset.X) / t.scale,
		Y: (pt.Y - place.Offset.Y) / t.scale,
	}
	for _, a := range annots {
		if a.Kind != engine.KindHighlight || !a.Rect.Contains(local) {
			continue
		}
		if err := page.RemoveAnnotation(a.ID); err != nil {
			return err
		}
		t.cache.Invalidate(place.Index)
		t.log.Debug().Str("annotation", a.ID).Int("page", place.Index).Msg("highlight removed")
		return nil
	}
	return nil
}

// Save writes the document back to the path it was opened from.
func (t *Tab) Save() error {
	if t.path == "" {
		return ErrNoFilePath
	}
	return t.doc.Save(t.path)
}

// SaveAs writes the document to a new path, which becomes the tab's path
// on success.
func (t *Tab) SaveAs(path string) error {
	if err := t.doc.Save(path); err != nil {
		return err
	}
	t.path = path
	return nil
}

// PreExtract warms the text-quad cache for every page with a bounded
// worker pool. Pages without text are skipped; other failures abort.
func (t *Tab) PreExtract(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preExtractWorkers)
	for i := 0; i < len(t.sizes); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, err := t.doc.Page(i)
			if err != nil {
				return err
			}
			if _, err := page.Quads(); err != nil && !errors.Is(err, engine.ErrNoQuads) {
				return fmt.Errorf("pre-extract page %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Generation identifies the tab's lifetime. Async completions compare the
// generation they started under and drop their result on mismatch.
func (t *Tab) Generation() uint64 { return t.gen }

// Expired reports whether a completion from generation gen is stale.
func (t *Tab) Expired(gen uint64) bool {
	return t.closed || gen != t.gen
}

// Close releases the document and invalidates outstanding completions.
func (t *Tab) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.gen++
	return t.doc.Close()
}

func (t *Tab) relayout() {
	t.view = layout.Compute(t.sizes, t.scale, t.mode, t.viewportW)
	t.sel.SetView(t.view, t.scale)
	t.clampScroll()
}

func (t *Tab) clampScroll() {
	maxX := max(t.view.Bounds.Width()-t.viewportW, 0)
	maxY := max(t.view.Bounds.Height()-t.viewportH, 0)
	t.scroll.X = min(max(t.scroll.X, 0), maxX)
	t.scroll.Y = min(max(t.scroll.Y, 0), maxY)
}

func (t *Tab) toCanvas(pt geom.Point) geom.Point {
	return pt.Add(t.scroll)
}
