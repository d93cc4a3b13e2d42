// Package selection maps pointer gestures to text selections. A drag is an
// explicit state machine (Idle → Pressed → Dragging → released) driven by
// the single-threaded event loop, so no gesture state leaks into the input
// handlers.
package selection

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foliops/folio/internal/core/geom"
	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/viewer/layout"
)

// minBoxWidth is the smallest box selection width, in canvas units, that
// counts as a deliberate gesture. Anything narrower is discarded.
const minBoxWidth = 5.0

// Phase is the gesture state.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Dragging
)

// SubMode says how the active gesture selects.
type SubMode int

const (
	// Linear selection walks the page's reading-order quad list.
	Linear SubMode = iota
	// Box selection is the rubber-band fallback for pages without
	// extractable text.
	Box
)

// Result is a resolved gesture. A zero Result means the gesture was
// discarded (degenerate, off-page, or failed quad math).
type Result struct {
	Committed bool
	PageIndex int
	Linear    bool

	// Quads is the selected text runs, page-local. For box selections it
	// holds the runs intersecting the box, and may be empty.
	Quads []engine.TextQuad

	// Rect is the selection box in page-local units. Set for box
	// selections only.
	Rect geom.Rect
}

// Text concatenates the selected runs in index order, with surrounding
// whitespace trimmed. Empty when no runs resolved.
func (r Result) Text() string {
	var b strings.Builder
	for i, q := range r.Quads {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(q.Text)
	}
	return strings.TrimSpace(b.String())
}

// Mapper resolves drag gestures against the current layout. It holds the
// quad cache for the page the active gesture started on; the cache is
// refetched on every press so indices never outlive a gesture.
type Mapper struct {
	doc engine.Document
	log zerolog.Logger

	view  layout.Result
	scale float64

	phase    Phase
	sub      SubMode
	page     layout.Placement
	onPage   bool
	quads    []engine.TextQuad
	startIdx int
	endIdx   int
	origin   geom.Point // canvas units
	current  geom.Point
}

// NewMapper creates a mapper for doc.
func NewMapper(doc engine.Document, log zerolog.Logger) *Mapper {
	return &Mapper{
		doc: doc,
		log: log.With().Str("component", "selection").Logger(),
	}
}

// SetView installs the current layout and scale. Any in-flight gesture is
// abandoned: its indices were computed against the old geometry.
func (m *Mapper) SetView(view layout.Result, scale float64) {
	m.view = view
	m.scale = scale
	m.Reset()
}

// Phase returns the current gesture phase.
func (m *Mapper) Phase() Phase { return m.phase }

// Reset abandons the active gesture and clears the quad cache.
func (m *Mapper) Reset() {
	m.phase = Idle
	m.quads = nil
	m.onPage = false
	m.startIdx = -1
	m.endIdx = -1
}

// Press starts a gesture at a canvas point. The page under the pointer is
// located first; its quads decide the sub-mode. Pressing outside every
// page still arms the gesture so a later release resolves to a no-op.
func (m *Mapper) Press(pt geom.Point) {
	m.Reset()
	m.phase = Pressed
	m.origin = pt
	m.current = pt

	page, ok := m.view.PageAt(pt)
	if !ok {
		return
	}
	m.page = page
	m.onPage = true
	m.sub = Box

	quads, err := m.pageQuads(page.Index)
	if err != nil {
		if !errors.Is(err, engine.ErrNoQuads) {
			m.log.Debug().Err(err).Int("page", page.Index).Msg("quad fetch failed, using box selection")
		}
		return
	}

	m.sub = Linear
	m.quads = quads
	m.startIdx = FindClosestQuad(quads, m.toPageLocal(pt))
	m.endIdx = m.startIdx
}

// Move extends the gesture to a new canvas point.
func (m *Mapper) Move(pt geom.Point) {
	if m.phase == Idle {
		return
	}
	m.phase = Dragging
	m.current = pt

	if m.sub == Linear && m.onPage {
		m.endIdx = FindClosestQuad(m.quads, m.toPageLocal(pt))
	}
}

// Release ends the gesture and resolves it into a Result. The mapper
// returns to Idle regardless of outcome.
func (m *Mapper) Release(pt geom.Point) Result {
	if m.phase == Idle {
		return Result{}
	}
	m.current = pt
	defer m.Reset()

	if !m.onPage {
		return Result{}
	}

	if m.sub == Linear {
		// A press and release without motion is a click, not a selection.
		if m.phase != Dragging {
			return Result{}
		}
		quads := m.selectedQuads()
		if len(quads) == 0 {
			return Result{}
		}
		return Result{
			Committed: true,
			PageIndex: m.page.Index,
			Linear:    true,
			Quads:     quads,
		}
	}

	box := geom.RectFromPoints(m.origin, m.current)
	if box.Width() <= minBoxWidth {
		return Result{}
	}

	clipped := box.Canon()
	pageBounds := m.page.Bounds()
	if !clipped.Intersects(pageBounds) {
		return Result{}
	}
	clipped = geom.Rect{
		X0: max(clipped.X0, pageBounds.X0),
		Y0: max(clipped.Y0, pageBounds.Y0),
		X1: min(clipped.X1, pageBounds.X1),
		Y1: min(clipped.Y1, pageBounds.Y1),
	}

	local := geom.Rect{
		X0: (clipped.X0 - m.page.Offset.X) / m.scale,
		Y0: (clipped.Y0 - m.page.Offset.Y) / m.scale,
		X1: (clipped.X1 - m.page.Offset.X) / m.scale,
		Y1: (clipped.Y1 - m.page.Offset.Y) / m.scale,
	}

	res := Result{
		Committed: true,
		PageIndex: m.page.Index,
		Rect:      local,
	}
	// prefer real text runs under the box when the engine has any
	if quads, err := m.pageQuads(m.page.Index); err == nil {
		for _, q := range quads {
			if q.Quad.Bounds().Intersects(local) {
				res.Quads = append(res.Quads, q)
			}
		}
	}
	return res
}

// Overlay returns the active selection's outline in canvas coordinates:
// one polygon per selected quad for linear gestures, the rubber-band
// rectangle for box gestures. Nil when there is nothing to draw.
func (m *Mapper) Overlay() []geom.Quad {
	if m.phase == Idle || !m.onPage {
		return nil
	}

	if m.sub == Linear {
		sel := m.selectedQuads()
		if len(sel) == 0 {
			return nil
		}
		out := make([]geom.Quad, 0, len(sel))
		for _, q := range sel {
			out = append(out, q.Quad.Transform(m.scale, m.page.Offset))
		}
		return out
	}

	box := geom.RectFromPoints(m.origin, m.current)
	if box.IsEmpty() {
		return nil
	}
	return []geom.Quad{geom.QuadFromRect(box)}
}

// selectedQuads returns the normalized inclusive slice between the gesture
// endpoints.
func (m *Mapper) selectedQuads() []engine.TextQuad {
	if m.startIdx < 0 || m.endIdx < 0 {
		return nil
	}
	lo, hi := m.startIdx, m.endIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi >= len(m.quads) {
		return nil
	}
	return m.quads[lo : hi+1]
}

func (m *Mapper) toPageLocal(pt geom.Point) geom.Point {
	return geom.Point{
		X: (pt.X - m.page.Offset.X) / m.scale,
		Y: (pt.Y - m.page.Offset.Y) / m.scale,
	}
}

func (m *Mapper) pageQuads(index int) ([]engine.TextQuad, error) {
	page, err := m.doc.Page(index)
	if err != nil {
		return nil, err
	}
	return page.Quads()
}

// FindClosestQuad returns the index of the quad containing p, or failing
// containment, the quad whose center is nearest by squared Euclidean
// distance. The full list is scanned; at document-page quad counts a
// spatial index is not worth its complexity. Returns -1 for an empty list.
func FindClosestQuad(quads []engine.TextQuad, p geom.Point) int {
	best := -1
	bestDist := 0.0
	for i, q := range quads {
		if q.Quad.Contains(p) {
			return i
		}
		d := q.Quad.Center().DistSq(p)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
